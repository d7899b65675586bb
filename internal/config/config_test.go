package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Ledger.DecrementStockOnPay)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Auth.CatalogAdmins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=localhost user=kitchen dbname=kitchen")
	t.Setenv("LEDGER_DECREMENT_STOCK_ON_PAY", "false")
	t.Setenv("AUTH_OTP_TTL", "5m")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AUTH_CATALOG_ADMINS", "chef@example.com,ops@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=localhost user=kitchen dbname=kitchen", cfg.Database.DSN)
	assert.False(t, cfg.Ledger.DecrementStockOnPay)
	assert.Equal(t, 5*time.Minute, cfg.Auth.OTPTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"chef@example.com", "ops@example.com"}, cfg.Auth.CatalogAdmins)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")
}
