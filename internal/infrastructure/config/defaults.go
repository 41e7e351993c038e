package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/markets.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.RetentionDays == 0 {
		cfg.Database.RetentionDays = 2
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// API defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.spacetraders.io/v2"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.RateLimit.PerSecond == 0 {
		cfg.API.RateLimit.PerSecond = 2
	}
	if cfg.API.RateLimit.PerMinute == 0 {
		cfg.API.RateLimit.PerMinute = 30
	}
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 2
	}
	if cfg.API.Retry.Total == 0 {
		cfg.API.Retry.Total = 6
	}
	if cfg.API.Retry.Connect == 0 {
		cfg.API.Retry.Connect = 3
	}
	if cfg.API.Retry.Read == 0 {
		cfg.API.Retry.Read = 3
	}
	if cfg.API.Retry.Status == 0 {
		cfg.API.Retry.Status = 6
	}
	if cfg.API.Retry.BackoffFactor == 0 {
		cfg.API.Retry.BackoffFactor = 1.2
	}

	// Scheduler defaults
	if cfg.Scheduler.MaxSleep == 0 {
		cfg.Scheduler.MaxSleep = 500 * time.Millisecond
	}
	if cfg.Scheduler.MinSleep == 0 {
		cfg.Scheduler.MinSleep = 50 * time.Millisecond
	}
	if cfg.Scheduler.FailureBackoff == 0 {
		cfg.Scheduler.FailureBackoff = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/starhelm-daemon.pid"
	}
}
