package domain

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for malformed, badly signed or expired access tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidRefreshToken covers unknown, revoked, expired and lost-race refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrForbidden           = errors.New("forbidden")
	// ErrServiceUnavailable marks a storage timeout or transient fault. Callers may retry.
	ErrServiceUnavailable = errors.New("service unavailable")

	ErrNotFound       = errors.New("not found")
	ErrAlreadyRevoked = errors.New("refresh token already revoked")
)
