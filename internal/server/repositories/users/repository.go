// Package users declares the persistence contract for account rows,
// including the per-user session slot (refresh token + expiry).
package users

import (
	"context"
	"time"

	"github.com/mesadesk/ticketdesk/internal/server/models"
)

// Repository defines operations on user rows. Session mutations follow the
// single-active-session model: the refresh token and its expiry live on the
// user row and are always written together.
type Repository interface {
	// Create inserts a new user without a session. Returns
	// common.ErrDuplicateUser when the payroll number is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByPayrollNumber returns the user (with role name) or
	// common.ErrorNotFound.
	GetByPayrollNumber(ctx context.Context, payrollNumber int) (*models.User, error)

	// GetByID returns the user (with role name) or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// SetSession stores a refresh token and its expiry on the user row,
	// replacing any previous session. Returns common.ErrorNotFound when the
	// user does not exist.
	SetSession(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// RotateSession atomically replaces oldToken with newToken on the single
	// row whose stored token equals oldToken and whose expiry is strictly in
	// the future, returning that user. Concurrent callers presenting the
	// same token race on this conditional update; the loser gets
	// common.ErrorNotFound.
	RotateSession(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)

	// ClearSession removes the refresh token and expiry from the user row.
	// Clearing an already-empty session slot is not an error; a missing user
	// is common.ErrorNotFound.
	ClearSession(ctx context.Context, userID int64) error
}
