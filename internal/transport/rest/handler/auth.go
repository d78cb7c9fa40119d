package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"impostorhunt/internal/logging"
	"impostorhunt/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// GuestLogin handles POST /v1/auth/guest
func (h *AuthHandler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authSvc.GuestLogin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue guest token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// precondition failures are 400 with their reason, exhausted-retry
// conflicts are 409 and retryable, everything else is an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *service.InvalidStateError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, invalid.Reason)
		return
	}
	if errors.Is(err, service.ErrConflict) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	logging.FromContext(r.Context()).Errorw("request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
