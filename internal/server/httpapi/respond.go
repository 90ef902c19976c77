package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mesadesk/ticketdesk/internal/common"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError translates service-level sentinel errors into HTTP
// statuses. Anything unrecognized becomes a 500 with a generic message so
// internals never leak to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrRefreshTokenInvalid):
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
	case errors.Is(err, common.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "payroll number already registered")
	case errors.Is(err, common.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "unknown role")
	case errors.Is(err, common.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
