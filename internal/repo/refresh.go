package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/domain"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

// maxIssueAttempts bounds retries after a token_hash collision.
const maxIssueAttempts = 3

// Issue stores a new refresh token and returns its raw value. An empty family
// starts a new chain.
func (r *GormRepo) Issue(ctx context.Context, userID uint, family string, meta models.TokenMetadata) (string, *models.RefreshToken, error) {
	if family == "" {
		family = uuid.NewString()
	}
	return r.issue(r.DB.WithContext(ctx), userID, family, meta)
}

func (r *GormRepo) issue(db *gorm.DB, userID uint, family string, meta models.TokenMetadata) (string, *models.RefreshToken, error) {
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		raw, err := r.newSecret()
		if err != nil {
			return "", nil, err
		}

		now := r.now()
		rec := &models.RefreshToken{
			UserID:    userID,
			TokenHash: tokens.DigestRefresh(raw),
			Family:    family,
			IssuedAt:  now,
			ExpiresAt: now.Add(r.RefreshTTL),
			UserAgent: auditString(meta.UserAgent, 512),
			IPAddress: auditString(meta.IPAddress, 64),
		}

		// a savepoint keeps an enclosing transaction usable after a collision
		err = db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(rec).Error
		})
		if err == nil {
			return raw, rec, nil
		}
		if !isDuplicate(err) {
			return "", nil, fmt.Errorf("insert refresh token: %w", err)
		}
	}
	return "", nil, fmt.Errorf("%w: refresh token digest collided %d times", domain.ErrServiceUnavailable, maxIssueAttempts)
}

// Lookup finds a record by the digest of raw.
func (r *GormRepo) Lookup(ctx context.Context, raw string) (*models.RefreshToken, error) {
	if raw == "" {
		return nil, domain.ErrNotFound
	}

	var rec models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token_hash = ?", tokens.DigestRefresh(raw)).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	return &rec, nil
}

// Revoke is idempotent: an already revoked record keeps its revoked_at.
func (r *GormRepo) Revoke(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", r.now()).Error
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *GormRepo) RevokeAll(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now())
	if res.Error != nil {
		return 0, fmt.Errorf("revoke user refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Rotate revokes oldID only if it is still active and, in the same
// transaction, issues its successor in family. domain.ErrAlreadyRevoked means
// another caller won the race.
func (r *GormRepo) Rotate(ctx context.Context, oldID, userID uint, family string, meta models.TokenMetadata) (string, *models.RefreshToken, error) {
	var (
		raw string
		rec *models.RefreshToken
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND user_id = ? AND revoked_at IS NULL", oldID, userID).
			Update("revoked_at", r.now())
		if res.Error != nil {
			return fmt.Errorf("revoke rotated refresh token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrAlreadyRevoked
		}

		var err error
		raw, rec, err = r.issue(tx, userID, family, meta)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return raw, rec, nil
}
