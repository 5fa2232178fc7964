package sessions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/user/poker-tracker-go/apperror"
	"github.com/user/poker-tracker-go/auth"
)

// Handlers provides the HTTP layer over the session Service.
type Handlers struct {
	service  *Service
	validate *validator.Validate
}

// NewHandlers creates session Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the session routes on the given router. The export
// route is registered before the id route so "export" is never parsed as a
// session id.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate())
	r.Get("/", h.HandleList())
	r.Get("/export", h.HandleExport())
	r.Get("/{id}", h.HandleGet())
	r.Put("/{id}", h.HandleUpdate())
	r.Delete("/{id}", h.HandleDelete())
}

// ownerID pulls the authenticated user id injected by the auth gate.
func ownerID(r *http.Request) (uuid.UUID, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, apperror.NewAuthError("Unauthorized", nil)
	}
	return userID, nil
}

// sessionID parses the {id} path parameter. A malformed id behaves like a
// nonexistent session.
func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.NewNotFoundError("Session not found", nil)
	}
	return id, nil
}

// HandleCreate records a new session and returns it with derived profit.
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ownerID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("Validation failed", validationDetails(err)))
			return
		}

		session, err := h.service.Create(r.Context(), userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, session.WithProfit())
	}
}

// HandleList returns the owner's sessions, most recent date first, each with
// derived profit.
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ownerID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		sessions, err := h.service.List(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		withProfit := make([]SessionWithProfit, 0, len(sessions))
		for _, s := range sessions {
			withProfit = append(withProfit, s.WithProfit())
		}

		auth.WriteJSON(w, http.StatusOK, withProfit)
	}
}

// HandleGet returns a single owned session with derived profit.
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ownerID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := sessionID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		session, err := h.service.Get(r.Context(), id, userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, session.WithProfit())
	}
}

// HandleUpdate applies a partial update to an owned session.
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ownerID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := sessionID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("Validation failed", validationDetails(err)))
			return
		}

		session, err := h.service.Update(r.Context(), id, userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, session.WithProfit())
	}
}

// HandleDelete removes an owned session. A repeat delete reports not-found.
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ownerID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := sessionID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Delete(r.Context(), id, userID); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Session deleted successfully"})
	}
}

// HandleExport streams the owner's sessions as a CSV attachment.
func (h *Handlers) HandleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ownerID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		timeRange := r.URL.Query().Get("time_range")

		csv, err := h.service.Export(r.Context(), userID, timeRange)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		rangeLabel := timeRange
		if rangeLabel == "" {
			rangeLabel = "all"
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="poker-sessions-`+rangeLabel+`.csv"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(csv))
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
