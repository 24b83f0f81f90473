package config

import "time"

// QueryConfig holds trip-query engine configuration
type QueryConfig struct {
	// Per-request deadline; on expiry the engine returns a failed
	// response with the elapsed time
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// Maximum number of alternative paths searched via edge exclusion
	MaxAlternatives int `mapstructure:"max_alternatives" validate:"min=0,max=5"`
}
