package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	env "github.com/Skotchmaster/food_delivery/pkg/config"
)

func setBaseEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"SERVICE_NAME", "HTTP_ADDR", "LOG_LEVEL", "DATABASE_URL", "AUTO_MIGRATE",
		"JWT_ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES", "REFRESH_TOKEN_EXPIRE_DAYS",
		"BCRYPT_COST", "STORAGE_TIMEOUT", "EVENT_TIMEOUT",
		"KAFKA_BROKERS", "KAFKA_AUTH_TOPIC", "ES_URL", "ES_USERNAME", "ES_PASSWORD", "ES_AUDIT_INDEX",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", "test-jwt-secret")
}

func TestFromEnv_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "auth", cfg.ServiceName)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, []byte("test-jwt-secret"), cfg.JWT.Secret)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 60*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 3*time.Second, cfg.StorageTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.EventTimeout)
	assert.Equal(t, "auth_events", cfg.Kafka.Topic)
	assert.Equal(t, "auth_audit", cfg.Elastic.Index)
	assert.False(t, cfg.EventsEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "30")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("STORAGE_TIMEOUT", "500ms")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 500*time.Millisecond, cfg.StorageTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.AutoMigrate)
	assert.True(t, cfg.EventsEnabled())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "missing secret", key: "JWT_SECRET", val: ""},
		{name: "asymmetric algorithm", key: "JWT_ALGORITHM", val: "RS256"},
		{name: "none algorithm", key: "JWT_ALGORITHM", val: "none"},
		{name: "zero access ttl", key: "ACCESS_TOKEN_EXPIRE_MINUTES", val: "0"},
		{name: "non numeric refresh ttl", key: "REFRESH_TOKEN_EXPIRE_DAYS", val: "week"},
		{name: "cost too low", key: "BCRYPT_COST", val: "2"},
		{name: "bad timeout", key: "STORAGE_TIMEOUT", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)

			cfg, err := FromEnv()
			require.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestFromEnv_MissingSecretIsTyped(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorIs(t, err, env.ErrMissingEnv)
}
