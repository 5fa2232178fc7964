package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// publicPaths is the fixed allowlist of routes that bypass authentication.
// Matching is exact, not by prefix.
var publicPaths = map[string]struct{}{
	"/health":        {},
	"/auth/register": {},
	"/auth/login":    {},
}

// ExtractUserID parses an Authorization header value into an authenticated
// user id. The scheme must be exactly "Bearer" followed by a single space;
// lowercase schemes or deviant spacing are rejected, not normalized. The
// remaining token must verify and carry a UUID subject.
func ExtractUserID(ts *TokenService, authHeader string) (uuid.UUID, error) {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	claims, err := ts.Verify(token)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// Middleware returns the authentication gate. Requests to allowlisted paths
// pass through untouched; every other request must present a valid bearer
// token, whose subject is attached to the request context as the user id.
// On any failure the gate writes the 401 response itself and the wrapped
// handler is never invoked. The gate holds no per-request state and is safe
// for concurrent use.
func Middleware(ts *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := ExtractUserID(ts, r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				// The gate owns the rejection response; missing, malformed,
				// expired and tampered tokens all look the same from outside.
				w.Write([]byte(`{"error":"Invalid or missing token"}`))
				return
			}

			ctx := NewContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
