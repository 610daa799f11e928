package integration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/domain"
	"github.com/Skotchmaster/food_delivery/internal/hash"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/pkg/db"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

type integrationEnv struct {
	db     *gorm.DB
	svc    *service.AuthService
	hasher *hash.Hasher
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()

	dsn := os.Getenv("AUTH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AUTH_TEST_DATABASE_URL is required for tests")
	}

	ctx := context.Background()
	gdb, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.User{}))
	require.NoError(t, repo.Migrate(ctx, gdb))

	minter, err := tokens.NewMinter([]byte("test-jwt-secret"), "HS256")
	require.NoError(t, err)
	hasher, err := hash.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	rp := &repo.GormRepo{DB: gdb, RefreshTTL: time.Hour}
	env := &integrationEnv{
		db:     gdb,
		hasher: hasher,
		svc: &service.AuthService{
			Users:  rp,
			Ledger: rp,
			Minter: minter,
			Hasher: hasher,
		},
	}

	t.Cleanup(func() {
		truncateTables(t, gdb)
		_ = db.Close(gdb)
	})

	return env
}

func truncateTables(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	gdb.Exec("TRUNCATE TABLE refresh_tokens, users RESTART IDENTITY CASCADE")
}

func (env *integrationEnv) createUser(t *testing.T, password string) string {
	t.Helper()

	email := "u_" + uuid.NewString() + "@x.com"
	digest, err := env.hasher.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.User{Email: email, PasswordHash: digest, Role: "client"}).Error)
	return email
}

func TestAuthService_Login_Success_IssuesTokens(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()
	email := env.createUser(t, "Secret123")

	pair, err := env.svc.Login(ctx, email, "Secret123", models.TokenMetadata{})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	var stored models.RefreshToken
	require.NoError(t, env.db.Where("token_hash = ?", tokens.DigestRefresh(pair.RefreshToken)).First(&stored).Error)
	assert.Nil(t, stored.RevokedAt)
	assert.Len(t, stored.Family, 36)
}

func TestAuthService_Refresh_ConcurrentRotation(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()
	email := env.createUser(t, "Secret123")

	pair, err := env.svc.Login(ctx, email, "Secret123", models.TokenMetadata{})
	require.NoError(t, err)

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Refresh(ctx, pair.RefreshToken, models.TokenMetadata{})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrInvalidRefreshToken) {
				t.Errorf("unexpected refresh error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestAuthService_LogoutAll_RevokesEveryToken(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()
	email := env.createUser(t, "Secret123")

	one, err := env.svc.Login(ctx, email, "Secret123", models.TokenMetadata{})
	require.NoError(t, err)
	two, err := env.svc.Login(ctx, email, "Secret123", models.TokenMetadata{})
	require.NoError(t, err)

	n, err := env.svc.LogoutAll(ctx, one.AccessToken, models.TokenMetadata{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = env.svc.Refresh(ctx, two.RefreshToken, models.TokenMetadata{})
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}
