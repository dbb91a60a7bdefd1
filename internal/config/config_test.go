package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_BASE_URL", "https://shop.example/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Payment.MaxAmount.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 6*time.Hour, cfg.Payment.RequestTTL)
	assert.Equal(t, "EUR", cfg.Payment.StoreCurrency)
	assert.Equal(t, "https://shop.example/api/v1/webhooks/quantoz", cfg.CallbackURL())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EURD_MAX_AMOUNT", "250.50")
	t.Setenv("EURD_REQUEST_TTL", "30m")
	t.Setenv("STORE_CURRENCY", "usd")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "250.5", cfg.Payment.MaxAmount.String())
	assert.Equal(t, 30*time.Minute, cfg.Payment.RequestTTL)
	assert.Equal(t, "USD", cfg.Payment.StoreCurrency)
}

func TestLoad_InvalidMaxAmount(t *testing.T) {
	for _, v := range []string{"abc", "0", "-5"} {
		t.Setenv("EURD_MAX_AMOUNT", v)
		_, err := Load()
		assert.Error(t, err, v)
	}
}

func TestValidate_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("SECRET_AUTH_KEY", "prod-key")
	t.Setenv("SECRET_AUTH_SALT", "prod-salt")
	_, err = Load()
	require.NoError(t, err)

	t.Setenv("QUANTOZ_USE_MOCK", "true")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_LockTTLCoversGatewayCalls(t *testing.T) {
	t.Setenv("QUANTOZ_TIMEOUT_SECONDS", "20")
	t.Setenv("EURD_LOCK_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 80*time.Second, cfg.Payment.LockTTL)
	assert.Greater(t, cfg.Payment.LockTTL, GatewayCallsPerRequest*cfg.Quantoz.Timeout)

	t.Setenv("EURD_LOCK_TTL", "30s")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("EURD_LOCK_TTL", "61s")
	_, err = Load()
	assert.NoError(t, err)
}

func TestWriteTimeout_CoversPaymentPath(t *testing.T) {
	t.Setenv("QUANTOZ_TIMEOUT_SECONDS", "60")
	t.Setenv("EURD_LOCK_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute+10*time.Second, cfg.WriteTimeout())
	assert.Greater(t, cfg.WriteTimeout(), cfg.Payment.LockTTL)
}
