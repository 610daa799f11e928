package repo

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

// GormRepo serves the read-only user directory and the refresh token ledger.
type GormRepo struct {
	DB         *gorm.DB
	RefreshTTL time.Duration

	// Now and NewSecret default to the wall clock and crypto/rand.
	Now       func() time.Time
	NewSecret func() (string, error)
}

// Migrate creates the ledger table. The users table belongs to the user service.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&models.RefreshToken{})
}

func (r *GormRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *GormRepo) newSecret() (string, error) {
	if r.NewSecret != nil {
		return r.NewSecret()
	}
	return tokens.NewRefreshSecret()
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// auditString drops invalid UTF-8 and cuts s to at most n bytes on a rune
// boundary, so client metadata can never fail an insert.
func auditString(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
