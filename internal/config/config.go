package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eurd-payments/pkg/logger"
)

// GatewayCallsPerRequest is the worst-case number of sequential gateway calls
// made while the per-order request lock is held
const GatewayCallsPerRequest = 3

// Dev-only fallbacks, rejected in production
const (
	devSecretAuthKey  = "dev-auth-key-change-in-production"
	devSecretAuthSalt = "dev-auth-salt-change-in-production"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Quantoz QuantozConfig
	Payment PaymentConfig
	Secret  SecretConfig
	Worker  WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	BaseURL     string // public URL of this service, used for callback and confirm links
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
	PollTokenExpiry   int // minutes
}

// =====================================================
// QUANTOZ PAY CONFIGURATION
// =====================================================

type QuantozConfig struct {
	APIURL  string        // https://api.quantozpay.com/
	PayURL  string        // https://pay.quantozpay.com/
	Timeout time.Duration // hard bound per outbound call
	UseMock bool          // in-memory gateway for local development

	// Bootstrap credentials, used until an admin saves settings
	APIKey      string
	AccountCode string
}

// =====================================================
// PAYMENT METHOD CONFIGURATION
// =====================================================

type PaymentConfig struct {
	StoreCurrency    string
	MaxAmount        decimal.Decimal
	RequestTTL       time.Duration // lifetime of a gateway payment request
	LockTTL          time.Duration // per-order lock around request creation
	PollInterval     time.Duration // advertised to the pay page
	AccountsCacheTTL time.Duration
	SettingsCacheTTL time.Duration
	WebhookPath      string
}

// SecretConfig holds the two host secrets the API key encryption key is derived from
type SecretConfig struct {
	AuthKey        string
	SecureAuthSalt string
}

type WorkerConfig struct {
	Concurrency     int
	SweepCron       string
	SweepLimit      int
	ConfirmRetry    time.Duration // delay before re-running a confirm that hit a gateway failure
	ConfirmMaxRetry int
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	maxAmount, err := decimal.NewFromString(getEnv("EURD_MAX_AMOUNT", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid EURD_MAX_AMOUNT: %w", err)
	}

	gatewayTimeout := time.Duration(getEnvInt("QUANTOZ_TIMEOUT_SECONDS", 60)) * time.Second

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "EURD Payments"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			BaseURL:     strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
			PollTokenExpiry:   getEnvInt("JWT_POLL_EXPIRY", 360), // matches request lifetime
		},
		Quantoz: QuantozConfig{
			APIURL:      getEnv("QUANTOZ_API_URL", "https://api.quantozpay.com/"),
			PayURL:      getEnv("QUANTOZ_PAY_URL", "https://pay.quantozpay.com/"),
			Timeout:     gatewayTimeout,
			UseMock:     getEnvBool("QUANTOZ_USE_MOCK", false),
			APIKey:      getEnv("QUANTOZ_API_KEY", ""),
			AccountCode: getEnv("QUANTOZ_ACCOUNT_CODE", ""),
		},
		Payment: PaymentConfig{
			StoreCurrency:    strings.ToUpper(getEnv("STORE_CURRENCY", "EUR")),
			MaxAmount:        maxAmount,
			RequestTTL:       getEnvDuration("EURD_REQUEST_TTL", 6*time.Hour),
			LockTTL:          getEnvDuration("EURD_LOCK_TTL", (GatewayCallsPerRequest+1)*gatewayTimeout),
			PollInterval:     getEnvDuration("EURD_POLL_INTERVAL", 5*time.Second),
			AccountsCacheTTL: getEnvDuration("EURD_ACCOUNTS_CACHE_TTL", 10*time.Minute),
			SettingsCacheTTL: getEnvDuration("EURD_SETTINGS_CACHE_TTL", 5*time.Minute),
			WebhookPath:      getEnv("EURD_WEBHOOK_PATH", "/api/v1/webhooks/quantoz"),
		},
		Secret: SecretConfig{
			AuthKey:        getEnv("SECRET_AUTH_KEY", devSecretAuthKey),
			SecureAuthSalt: getEnv("SECRET_AUTH_SALT", devSecretAuthSalt),
		},
		Worker: WorkerConfig{
			Concurrency:     getEnvInt("WORKER_CONCURRENCY", 10),
			SweepCron:       getEnv("EURD_SWEEP_CRON", "*/5 * * * *"),
			SweepLimit:      getEnvInt("EURD_SWEEP_LIMIT", 100),
			ConfirmRetry:    getEnvDuration("EURD_CONFIRM_RETRY_DELAY", 30*time.Second),
			ConfirmMaxRetry: getEnvInt("EURD_CONFIRM_MAX_RETRY", 5),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Payment.MaxAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("EURD_MAX_AMOUNT must be positive")
	}
	if c.Payment.RequestTTL <= 0 {
		return fmt.Errorf("EURD_REQUEST_TTL must be positive")
	}
	// Lock phải sống lâu hơn chuỗi GetRequest -> DeleteRequest -> CreateRequest
	if c.Payment.LockTTL <= GatewayCallsPerRequest*c.Quantoz.Timeout {
		return fmt.Errorf("EURD_LOCK_TTL (%s) must exceed %d x QUANTOZ_TIMEOUT_SECONDS (%s)",
			c.Payment.LockTTL, GatewayCallsPerRequest, c.Quantoz.Timeout)
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Secret.AuthKey == devSecretAuthKey || c.Secret.SecureAuthSalt == devSecretAuthSalt {
			return fmt.Errorf("SECRET_AUTH_KEY and SECRET_AUTH_SALT must be set in production")
		}
		if c.Quantoz.UseMock {
			return fmt.Errorf("QUANTOZ_USE_MOCK cannot be enabled in production")
		}
	}

	// Method is disabled at runtime rather than failing startup
	if c.Payment.StoreCurrency != "EUR" {
		logger.Warn("Store currency is not EUR, EURD payment method will be unavailable", map[string]interface{}{
			"currency": c.Payment.StoreCurrency,
		})
	}

	return nil
}

// WriteTimeout cho HTTP server: /eurd/pay có thể gọi gateway tối đa
// GatewayCallsPerRequest lần, cộng account check và confirm
func (c *Config) WriteTimeout() time.Duration {
	return (GatewayCallsPerRequest+2)*c.Quantoz.Timeout + 10*time.Second
}

// CallbackURL là URL mà gateway gọi về khi payment request thay đổi trạng thái
func (c *Config) CallbackURL() string {
	return c.App.BaseURL + c.Payment.WebhookPath
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
