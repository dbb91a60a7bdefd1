package config

import (
	"fmt"
	"time"

	"eurd-payments/internal/infrastructure/database"
)

// LoadDatabaseConfig đọc config từ environment variables và trả về DBConfig
func LoadDatabaseConfig() (*database.DBConfig, error) {
	cfg := &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              getEnvInt("DB_PORT", 5432),
		Username:          getEnv("DB_USER", "eurd"),
		Password:          getEnv("DB_PASSWORD", "secret"),
		DBName:            getEnv("DB_NAME", "eurd_payments"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(getEnvInt("DB_MAX_CONNECTIONS", 20)),
		MinConns:          int32(getEnvInt("DB_MIN_CONNECTIONS", 2)),
		MaxConnLifetime:   getEnvDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
		MaxConnIdleTime:   getEnvDuration("DB_MAX_CONN_IDLE_TIME", time.Minute),
		HealthCheckPeriod: getEnvDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
		MaxRetries:        getEnvInt("DB_MAX_RETRIES", 5),
		RetryDelay:        getEnvDuration("DB_RETRY_DELAY", time.Second),
		ConnectTimeout:    getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
	}

	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("invalid DB_MAX_RETRIES: must be at least 1")
	}
	if cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("invalid DB_MIN_CONNECTIONS: greater than DB_MAX_CONNECTIONS")
	}

	return cfg, nil
}
