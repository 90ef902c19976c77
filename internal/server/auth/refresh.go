package auth

import (
	"encoding/base64"

	"github.com/mesadesk/ticketdesk/internal/common"
)

// refreshTokenBytes is the entropy of a refresh token: 32 bytes = 256 bits.
const refreshTokenBytes = 32

// GenerateRefreshToken produces an opaque, base64-encoded refresh token from
// the cryptographically secure random source. The value carries no claims;
// its only property is unguessability.
func GenerateRefreshToken() string {
	return base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(refreshTokenBytes))
}
