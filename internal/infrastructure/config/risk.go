package config

import "time"

// RiskConfig holds risk-scorer client configuration
type RiskConfig struct {
	// Enabled controls whether routes are annotated with a risk score
	Enabled bool `mapstructure:"enabled"`

	// Rate limiting settings for the scorer
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Per-assessment timeout
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}
