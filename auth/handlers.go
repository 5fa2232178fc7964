package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/poker-tracker-go/apperror"
)

// Handlers provides the HTTP layer over the identity Service.
type Handlers struct {
	service  *Service
	tokens   *TokenService
	validate *validator.Validate
}

// NewHandlers creates auth Handlers.
func NewHandlers(service *Service, tokens *TokenService) *Handlers {
	return &Handlers{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// HandleRegister creates an account and returns a bearer token with the
// created user. 201 on success, 409 on a duplicate email or username.
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError("Validation failed", validationDetails(err)))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		token, err := h.tokens.Issue(user.ID)
		if err != nil {
			WriteError(w, r, apperror.NewInternalError("Token generation failed", err))
			return
		}

		WriteJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
	}
}

// HandleLogin authenticates a user and returns a bearer token. Unknown
// email and wrong password are indistinguishable 401s.
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError("Validation failed", validationDetails(err)))
			return
		}

		user, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		token, err := h.tokens.Issue(user.ID)
		if err != nil {
			WriteError(w, r, apperror.NewInternalError("Token generation failed", err))
			return
		}

		WriteJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
	}
}

// HandleMe returns the authenticated user's record.
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		user, err := h.service.GetUser(r.Context(), userID)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, user)
	}
}

// HandleUpdateCookieConsent sets or revokes the cookie-consent flag and
// returns the updated user.
func (h *Handlers) HandleUpdateCookieConsent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		var req UpdateCookieConsentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, err := h.service.UpdateCookieConsent(r.Context(), userID, req.CookieConsent)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, user)
	}
}

// HandleChangePassword re-verifies the current password before storing the
// new one. A wrong current password is a 401.
func (h *Handlers) HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError("Validation failed", validationDetails(err)))
			return
		}

		if err := h.service.ChangePassword(r.Context(), userID, req); err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password changed successfully"})
	}
}

// validationDetails flattens validator errors into a readable details string.
func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" failed on the '"+fe.Tag()+"' rule")
	}
	return strings.Join(parts, "; ")
}

// WriteJSON serializes data to the response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"Failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError writes a standardized JSON error response. Errors that are not
// AppErrors are wrapped as internal errors so nothing leaks raw.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("An unexpected error occurred", err)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
