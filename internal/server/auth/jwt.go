// Package auth implements the credential primitives of the session
// lifecycle: signed access tokens, the password hash, and the opaque
// refresh-token value.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mesadesk/ticketdesk/internal/common"
)

// Claims is the access-token claim set. Registered claims carry subject
// (user id), issuer, audience, issued-at and expiry; the custom fields carry
// the identity facts the frontend renders without a store lookup.
type Claims struct {
	jwt.RegisteredClaims
	Name          string `json:"name"`
	Role          string `json:"role"`
	PayrollNumber int    `json:"payroll_number"`
}

// UserID returns the numeric subject of the claim set.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

// TokenIssuer mints and verifies HS256 access tokens bound to a fixed
// issuer/audience pair. The signing key is symmetric and shared with no one
// but the verifying middleware.
type TokenIssuer struct {
	secretKey []byte
	issuer    string
	audience  string
	validity  time.Duration
}

func NewTokenIssuer(secretKey []byte, issuer, audience string, validity time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secretKey: secretKey,
		issuer:    issuer,
		audience:  audience,
		validity:  validity,
	}
}

// Issue signs a token for the given identity. The returned expiry is the
// same instant stamped into the exp claim; callers must not derive a second
// lifetime of their own.
func (i *TokenIssuer) Issue(userID int64, name, role string, payrollNumber int) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:          name,
		Role:          role,
		PayrollNumber: payrollNumber,
	})

	tokenString, err := token.SignedString(i.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Verify parses and validates a token string. It rejects tokens with a bad
// signature, a non-HMAC signing method, the wrong issuer or audience, or an
// expiry in the past (no leeway).
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
