package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesadesk/ticketdesk/internal/server/models"
	"github.com/mesadesk/ticketdesk/internal/server/services"
)

// AuthProvider is the slice of AuthService the auth endpoints need.
type AuthProvider interface {
	Register(ctx context.Context, name string, payrollNumber int, password, roleName string) (*models.User, error)
	Login(ctx context.Context, payrollNumber int, password string) (*services.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenResponse, error)
	Logout(ctx context.Context, userID int64) error
}

// AuthHandler serves the /api/Auth endpoints.
type AuthHandler struct {
	auth AuthProvider
}

func NewAuthHandler(auth AuthProvider) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AuthRouter registers the auth routes. Logout is the only one requiring a
// valid access token.
func AuthRouter(r chi.Router, auth AuthProvider, requireAuth func(http.Handler) http.Handler) {
	h := NewAuthHandler(auth)

	r.Post("/Register", h.Register)
	r.Post("/Login", h.Login)
	r.Post("/Refresh", h.Refresh)
	r.With(requireAuth).Post("/Logout", h.Logout)
}

type RegisterRequest struct {
	Name          string `json:"name"`
	PayrollNumber int    `json:"payrollNumber"`
	Password      string `json:"password"`
	Role          string `json:"role"`
}

type UserResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	PayrollNumber int    `json:"payrollNumber"`
	Role          string `json:"role"`
}

type LoginRequest struct {
	PayrollNumber int    `json:"payrollNumber"`
	Password      string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func tokenResponseFrom(t *services.TokenResponse) TokenResponse {
	return TokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.AccessTokenExpiresAt,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.TrimSpace(req.Role)
	if req.Name == "" || req.Role == "" || req.Password == "" || req.PayrollNumber <= 0 {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.PayrollNumber, req.Password, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		PayrollNumber: user.PayrollNumber,
		Role:          user.RoleName,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.PayrollNumber <= 0 || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	tokens, err := h.auth.Login(r.Context(), req.PayrollNumber, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponseFrom(tokens))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "missing refresh token")
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponseFrom(tokens))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.auth.Logout(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
