package models

import "time"

// User is owned by the user service. This service only reads it.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:'client'" json:"role"`
}

type RefreshToken struct {
	ID        uint       `gorm:"primaryKey"                   json:"id"`
	UserID    uint       `gorm:"index;not null"               json:"user_id"`
	TokenHash string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Family    string     `gorm:"size:36;index;not null"       json:"family"`
	IssuedAt  time.Time  `gorm:"not null"                     json:"issued_at"`
	ExpiresAt time.Time  `gorm:"not null"                     json:"expires_at"`
	RevokedAt *time.Time `                                    json:"revoked_at,omitempty"`
	UserAgent string     `gorm:"size:512"                     json:"user_agent,omitempty"`
	IPAddress string     `gorm:"size:64"                      json:"ip_address,omitempty"`
}

type TokenState int

const (
	TokenActive TokenState = iota
	TokenRevoked
	TokenExpired
)

func (s TokenState) String() string {
	switch s {
	case TokenActive:
		return "active"
	case TokenRevoked:
		return "revoked"
	case TokenExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Validate reports the state of the record at now. Revoked wins over Expired.
func (t *RefreshToken) Validate(now time.Time) TokenState {
	if t.RevokedAt != nil {
		return TokenRevoked
	}
	if !now.Before(t.ExpiresAt) {
		return TokenExpired
	}
	return TokenActive
}

// TokenMetadata is audit-only information about the client that asked for a token.
type TokenMetadata struct {
	UserAgent string
	IPAddress string
}

// Identity is what a verified access token proves about its bearer.
type Identity struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
