package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshToken_Validate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)

	tests := []struct {
		name string
		rec  RefreshToken
		want TokenState
	}{
		{name: "active", rec: RefreshToken{ExpiresAt: now.Add(time.Hour)}, want: TokenActive},
		{name: "expired exactly now", rec: RefreshToken{ExpiresAt: now}, want: TokenExpired},
		{name: "expired", rec: RefreshToken{ExpiresAt: past}, want: TokenExpired},
		{name: "revoked", rec: RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &past}, want: TokenRevoked},
		{name: "revoked and expired", rec: RefreshToken{ExpiresAt: past, RevokedAt: &past}, want: TokenRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.rec.Validate(now))
		})
	}
}

func TestTokenState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "active", TokenActive.String())
	assert.Equal(t, "revoked", TokenRevoked.String())
	assert.Equal(t, "expired", TokenExpired.String())
	assert.Equal(t, "unknown", TokenState(99).String())
}
