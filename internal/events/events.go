package events

import (
	"context"
	"errors"
	"time"
)

const (
	SessionStarted       = "session_started"
	SessionRotated       = "session_rotated"
	SessionRevoked       = "session_revoked"
	SessionsRevoked      = "sessions_revoked"
	RefreshReuseDetected = "refresh_reuse_detected"
)

// Event describes one session lifecycle change. It never carries token values.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    uint      `json:"user_id"`
	Family    string    `json:"family,omitempty"`
	TokenID   uint      `json:"token_id,omitempty"`
	Count     int64     `json:"count,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	IPAddress string    `json:"ip,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Fanout delivers every event to all publishers and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
