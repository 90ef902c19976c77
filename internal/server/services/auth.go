// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, login, refresh-token rotation and
// logout on top of the user and role repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mesadesk/ticketdesk/internal/common"
	"github.com/mesadesk/ticketdesk/internal/server/auth"
	"github.com/mesadesk/ticketdesk/internal/server/config"
	"github.com/mesadesk/ticketdesk/internal/server/models"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/roles"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/users"
)

// TokenResponse is the session payload returned by Login and Refresh. Both
// operations produce the identical shape; AccessTokenExpiresAt always equals
// the exp claim inside AccessToken.
type TokenResponse struct {
	AccessToken          string
	RefreshToken         string
	AccessTokenExpiresAt time.Time
}

// AuthService provides authentication-related operations:
//   - Register: create users (no session yet)
//   - Login: verify credentials and start a session
//   - Refresh: rotate the refresh token and mint a new access token
//   - Logout: tear the session down
type AuthService struct {
	users                        users.Repository
	roles                        roles.Repository
	tokens                       *auth.TokenIssuer
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(usersRepo users.Repository, rolesRepo roles.Repository, cfg *config.Config) *AuthService {
	return &AuthService{
		users:                        usersRepo,
		roles:                        rolesRepo,
		tokens:                       auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.JwtIssuer, cfg.JwtAudience, cfg.AccessTokenValidityDuration),
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Tokens exposes the issuer so the transport layer can verify access tokens
// with the same issuer/audience/key configuration.
func (s *AuthService) Tokens() *auth.TokenIssuer {
	return s.tokens
}

// Register creates a new user in the given role. The password is hashed
// before it reaches storage; no session is created.
func (s *AuthService) Register(ctx context.Context, name string, payrollNumber int, password, roleName string) (*models.User, error) {
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownRole
		}
		return nil, fmt.Errorf("error looking up role: %w", err)
	}

	user := &models.User{
		Name:          name,
		PayrollNumber: payrollNumber,
		RoleID:        role.ID,
		RoleName:      role.Name,
		PasswordHash:  auth.HashPassword(password),
	}

	user, err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, common.ErrDuplicateUser
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the payroll number and password and, on success, starts a
// session. A missing user and a wrong password both return
// common.ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, payrollNumber int, password string) (*TokenResponse, error) {
	user, err := s.users.GetByPayrollNumber(ctx, payrollNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	access, expiresAt, err := s.tokens.Issue(user.ID, user.Name, user.RoleName, user.PayrollNumber)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh := auth.GenerateRefreshToken()
	if err := s.users.SetSession(ctx, user.ID, refresh, time.Now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenResponse{AccessToken: access, RefreshToken: refresh, AccessTokenExpiresAt: expiresAt}, nil
}

// Refresh exchanges a live refresh token for a new token pair. Rotation is
// mandatory and atomic: the store replaces the old token only if it is still
// the current one and unexpired, so a used (or concurrently rotated) token is
// never accepted twice.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	newToken := auth.GenerateRefreshToken()

	user, err := s.users.RotateSession(ctx, refreshToken, newToken, time.Now().Add(s.refreshTokenValidityDuration))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("error rotating session: %w", err)
	}

	access, expiresAt, err := s.tokens.Issue(user.ID, user.Name, user.RoleName, user.PayrollNumber)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenResponse{AccessToken: access, RefreshToken: newToken, AccessTokenExpiresAt: expiresAt}, nil
}

// Logout clears the user's session slot. Logging out a user with no active
// session succeeds silently; only a missing user is an error.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.users.ClearSession(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}
