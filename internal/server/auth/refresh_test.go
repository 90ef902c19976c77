package auth

import (
	"encoding/base64"
	"testing"
)

func TestGenerateRefreshToken_EncodingAndEntropy(t *testing.T) {
	t.Parallel()

	tok := GenerateRefreshToken()

	raw, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not valid base64: %v", err)
	}
	if len(raw) != refreshTokenBytes {
		t.Fatalf("expected %d raw bytes, got %d", refreshTokenBytes, len(raw))
	}
}

func TestGenerateRefreshToken_Distinct(t *testing.T) {
	t.Parallel()

	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		tok := GenerateRefreshToken()
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate refresh token after %d generations", i)
		}
		seen[tok] = struct{}{}
	}
}
