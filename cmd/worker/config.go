package main

import (
	"log"

	"github.com/hibiken/asynq"

	"eurd-payments/internal/config"
)

// Config holds the worker view of the application config
type Config struct {
	App    *config.Config
	Redis  asynq.RedisClientOpt
	Health string
}

// loadConfig reads the shared application config from the environment
func loadConfig(app *config.Config) *Config {
	cfg := &Config{
		App: app,
		Redis: asynq.RedisClientOpt{
			Addr:     app.Redis.Host,
			Password: app.Redis.Password,
			DB:       app.Redis.DB,
		},
		Health: ":9999",
	}

	log.Printf("[Config] Redis: %s, concurrency: %d, sweep: %q",
		cfg.Redis.Addr, app.Worker.Concurrency, app.Worker.SweepCron)

	return cfg
}
