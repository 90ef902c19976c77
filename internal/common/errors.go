// Package common defines shared constants and sentinel errors used across
// ticketdesk components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Auth taxonomy. Login never distinguishes a missing user from a wrong
	// password; both surface as ErrInvalidCredentials.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateUser       = errors.New("user with this payroll number already exists")
	ErrUnknownRole         = errors.New("unknown role")
	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")

	// Access-token verification errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
