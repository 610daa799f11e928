package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// RefreshSecretBytes is the entropy of one opaque refresh token.
const RefreshSecretBytes = 48

// NewRefreshSecret returns a random URL-safe refresh token.
func NewRefreshSecret() (string, error) {
	buf := make([]byte, RefreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tokens: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DigestRefresh is the lookup key stored instead of the raw token.
func DigestRefresh(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
