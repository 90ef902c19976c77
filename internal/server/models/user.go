// Package models contains the persistent row types shared by repositories
// and services.
package models

import "time"

// User is an account row. RefreshToken and RefreshTokenExpiresAt describe
// the single active session: both nil (no session) or both set. The pair is
// only ever written together.
type User struct {
	ID                    int64
	Name                  string
	PayrollNumber         int
	RoleID                int64
	RoleName              string
	PasswordHash          string
	RefreshToken          *string
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
}
