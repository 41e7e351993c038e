package config

import "time"

// APIConfig holds remote API client configuration
type APIConfig struct {
	// Base URL for the game API
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Rate limiting settings
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// Retry configuration
	Retry RetryConfig `mapstructure:"retry"`
}

// RateLimitConfig holds the shared token-bucket limits.
// Both windows apply at once: a request must clear the per-second
// and the per-minute bucket before dispatch.
type RateLimitConfig struct {
	// Maximum requests per second
	PerSecond int `mapstructure:"per_second" validate:"min=1"`

	// Maximum requests per minute
	PerMinute int `mapstructure:"per_minute" validate:"min=1"`

	// Burst size for the per-second bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for failed requests
type RetryConfig struct {
	// Total retry attempts across all failure kinds
	Total int `mapstructure:"total" validate:"min=0"`

	// Attempt caps per failure kind
	Connect int `mapstructure:"connect" validate:"min=0"`
	Read    int `mapstructure:"read" validate:"min=0"`
	Status  int `mapstructure:"status" validate:"min=0"`

	// Multiplier for exponential backoff between attempts
	BackoffFactor float64 `mapstructure:"backoff_factor"`
}
