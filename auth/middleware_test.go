package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) (*TokenService, http.Handler, *uuid.UUID) {
	t.Helper()
	ts := NewTokenService("test-secret", time.Hour)

	var seenUserID uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := UserIDFromContext(r.Context()); ok {
			seenUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})

	return ts, Middleware(ts)(next), &seenUserID
}

func TestMiddleware_PublicPathsBypassAuth(t *testing.T) {
	_, gate, _ := newTestGate(t)

	for _, path := range []string{"/health", "/auth/register", "/auth/login"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestMiddleware_AllowlistIsExactMatch(t *testing.T) {
	_, gate, _ := newTestGate(t)

	// Prefix or suffix variants of public paths are protected.
	for _, path := range []string{"/health/", "/auth/register/extra", "/auth/login2", "/auth"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestMiddleware_ValidTokenInjectsUserID(t *testing.T) {
	ts, gate, seen := newTestGate(t)
	userID := uuid.New()

	token, err := ts.Issue(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, *seen)
}

func TestMiddleware_RejectsBadHeaders(t *testing.T) {
	ts, gate, _ := newTestGate(t)

	token, err := ts.Issue(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", token},
		{"lowercase scheme", "bearer " + token},
		{"uppercase scheme", "BEARER " + token},
		{"wrong scheme", "Basic " + token},
		{"double space", "Bearer  " + token},
		{"no space", "Bearer" + token},
		{"scheme only", "Bearer"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			gate.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid or missing token"}`, rec.Body.String())
		})
	}
}

func TestMiddleware_RejectsNonUUIDSubject(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)

	// A correctly signed token whose subject is not a user id must still
	// be rejected.
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ExtractUserID(ts, "Bearer "+signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware_GateOwnsRejectionBody(t *testing.T) {
	_, gate, _ := newTestGate(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Invalid or missing token"}`, rec.Body.String())
}
