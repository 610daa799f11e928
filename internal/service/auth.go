package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/food_delivery/internal/domain"
	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/logging"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

const (
	TokenTypeBearer = "bearer"

	defaultAccessTTL      = time.Hour
	defaultStorageTimeout = 3 * time.Second
	defaultEventTimeout   = 500 * time.Millisecond
)

// UserDirectory is the read-only view of users owned by the user service.
type UserDirectory interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

type Ledger interface {
	Issue(ctx context.Context, userID uint, family string, meta models.TokenMetadata) (string, *models.RefreshToken, error)
	Lookup(ctx context.Context, raw string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeAll(ctx context.Context, userID uint) (int64, error)
	Rotate(ctx context.Context, oldID, userID uint, family string, meta models.TokenMetadata) (string, *models.RefreshToken, error)
}

type TokenMinter interface {
	Mint(subject string, userID uint, role string, ttl time.Duration) (string, time.Time, error)
	Verify(token string) (*tokens.AccessClaims, error)
}

type CredentialStore interface {
	CheckPassword(digest, password string) bool
	BurnCompare(password string)
}

type Options struct {
	AccessTTL      time.Duration
	StorageTimeout time.Duration
	EventTimeout   time.Duration
}

// AuthService runs login, refresh rotation, logout and identity checks.
// It keeps no mutable state of its own.
type AuthService struct {
	Users  UserDirectory
	Ledger Ledger
	Minter TokenMinter
	Hasher CredentialStore
	Events events.Publisher
	Opts   Options

	Now func() time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (s *AuthService) Login(ctx context.Context, email, password string, meta models.TokenMetadata) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	sctx, cancel := s.storageCtx(ctx)
	user, err := s.Users.UserByEmail(sctx, email)
	cancel()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.Hasher.BurnCompare(password)
		l.Warn("login_failed", "status", 401, "reason", "unknown_email")
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		l.Error("login_failed", "status", 503, "error", err)
		return nil, unavailable(err)
	}

	if !s.Hasher.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong_password", "user_id", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	access, accessExp, err := s.Minter.Mint(user.Email, user.ID, user.Role, s.accessTTL())
	if err != nil {
		l.Error("login_failed", "status", 500, "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("mint access token: %w", err)
	}

	sctx, cancel = s.storageCtx(ctx)
	raw, rec, err := s.Ledger.Issue(sctx, user.ID, "", meta)
	cancel()
	if err != nil {
		l.Error("login_failed", "status", 503, "user_id", user.ID, "error", err)
		return nil, unavailable(err)
	}

	s.publish(ctx, events.Event{Type: events.SessionStarted}, rec, meta)
	l.Info("login_successful", "user_id", user.ID, "family", rec.Family)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		TokenType:    TokenTypeBearer,
		AccessExp:    accessExp,
		RefreshExp:   rec.ExpiresAt,
	}, nil
}

// Refresh exchanges an active refresh token for a new pair in the same
// family. The presented token can be used at most once.
func (s *AuthService) Refresh(ctx context.Context, raw string, meta models.TokenMetadata) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	sctx, cancel := s.storageCtx(ctx)
	rec, err := s.Ledger.Lookup(sctx, raw)
	cancel()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		l.Warn("refresh_rejected", "status", 401, "reason", "unknown_token")
		return nil, domain.ErrInvalidRefreshToken
	case err != nil:
		l.Error("refresh_failed", "status", 503, "error", err)
		return nil, unavailable(err)
	}

	l = l.With("user_id", rec.UserID, "family", rec.Family, "token_id", rec.ID)

	switch state := rec.Validate(s.now()); state {
	case models.TokenActive:
	case models.TokenRevoked:
		// The family is left alone; a replay is only reported.
		l.Warn("refresh_reuse_detected", "status", 401)
		s.publish(ctx, events.Event{Type: events.RefreshReuseDetected}, rec, meta)
		return nil, domain.ErrInvalidRefreshToken
	default:
		l.Warn("refresh_rejected", "status", 401, "reason", state.String())
		return nil, domain.ErrInvalidRefreshToken
	}

	sctx, cancel = s.storageCtx(ctx)
	user, err := s.Users.UserByID(sctx, rec.UserID)
	cancel()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		l.Warn("refresh_rejected", "status", 401, "reason", "user_gone")
		return nil, domain.ErrInvalidRefreshToken
	case err != nil:
		l.Error("refresh_failed", "status", 503, "error", err)
		return nil, unavailable(err)
	}

	access, accessExp, err := s.Minter.Mint(user.Email, user.ID, user.Role, s.accessTTL())
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("mint access token: %w", err)
	}

	sctx, cancel = s.storageCtx(ctx)
	newRaw, next, err := s.Ledger.Rotate(sctx, rec.ID, rec.UserID, rec.Family, meta)
	cancel()
	switch {
	case errors.Is(err, domain.ErrAlreadyRevoked):
		l.Warn("refresh_rejected", "status", 401, "reason", "lost_rotation_race")
		return nil, domain.ErrInvalidRefreshToken
	case err != nil:
		l.Error("refresh_failed", "status", 503, "error", err)
		return nil, unavailable(err)
	}

	s.publish(ctx, events.Event{Type: events.SessionRotated}, next, meta)
	l.Info("refresh_successful", "new_token_id", next.ID)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: newRaw,
		TokenType:    TokenTypeBearer,
		AccessExp:    accessExp,
		RefreshExp:   next.ExpiresAt,
	}, nil
}

// Logout revokes the presented refresh token if it is known. The outcome is
// never reported to the caller.
func (s *AuthService) Logout(ctx context.Context, raw string, meta models.TokenMetadata) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	sctx, cancel := s.storageCtx(ctx)
	rec, err := s.Ledger.Lookup(sctx, raw)
	cancel()
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			l.Error("logout_failed", "error", err)
		}
		return
	}
	if rec.RevokedAt != nil {
		l.Debug("logout_noop", "token_id", rec.ID)
		return
	}

	sctx, cancel = s.storageCtx(ctx)
	err = s.Ledger.Revoke(sctx, rec.ID)
	cancel()
	if err != nil {
		l.Error("logout_failed", "token_id", rec.ID, "error", err)
		return
	}

	s.publish(ctx, events.Event{Type: events.SessionRevoked}, rec, meta)
	l.Info("logout_successful", "user_id", rec.UserID, "token_id", rec.ID)
}

// LogoutAll revokes every active refresh token of the access token's owner.
func (s *AuthService) LogoutAll(ctx context.Context, accessToken string, meta models.TokenMetadata) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "auth.logout_all")

	who, err := s.CurrentUser(ctx, accessToken)
	if err != nil {
		return 0, err
	}

	sctx, cancel := s.storageCtx(ctx)
	n, err := s.Ledger.RevokeAll(sctx, who.ID)
	cancel()
	if err != nil {
		l.Error("logout_all_failed", "status", 503, "user_id", who.ID, "error", err)
		return 0, unavailable(err)
	}

	s.publish(ctx, events.Event{Type: events.SessionsRevoked, UserID: who.ID, Count: n}, nil, meta)
	l.Info("logout_all_successful", "user_id", who.ID, "revoked", n)
	return n, nil
}

// CurrentUser proves the identity carried by an access token.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	claims, err := s.Minter.Verify(accessToken)
	if err != nil {
		logging.FromContext(ctx).Debug("access_token_rejected", "error", err)
		return nil, domain.ErrInvalidToken
	}
	return &models.Identity{
		ID:       claims.UID,
		Email:    claims.Subject,
		Role:     claims.Role,
		IsActive: true,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, evt events.Event, rec *models.RefreshToken, meta models.TokenMetadata) {
	if s.Events == nil {
		return
	}

	evt.ID = uuid.NewString()
	evt.At = s.now()
	evt.UserAgent = meta.UserAgent
	evt.IPAddress = meta.IPAddress
	if rec != nil {
		evt.UserID = rec.UserID
		evt.Family = rec.Family
		evt.TokenID = rec.ID
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.eventTimeout())
	defer cancel()
	if err := s.Events.Publish(pctx, evt); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", evt.Type, "error", err)
	}
}

func (s *AuthService) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	d := s.Opts.StorageTimeout
	if d <= 0 {
		d = defaultStorageTimeout
	}
	return context.WithTimeout(ctx, d)
}

func (s *AuthService) accessTTL() time.Duration {
	if s.Opts.AccessTTL > 0 {
		return s.Opts.AccessTTL
	}
	return defaultAccessTTL
}

func (s *AuthService) eventTimeout() time.Duration {
	if s.Opts.EventTimeout > 0 {
		return s.Opts.EventTimeout
	}
	return defaultEventTimeout
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func unavailable(err error) error {
	if errors.Is(err, domain.ErrServiceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
}
