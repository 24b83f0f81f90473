package config

import "time"

// DaemonConfig holds long-running service configuration
type DaemonConfig struct {
	// PID file location for single-instance locking
	PIDFile string `mapstructure:"pid_file"`

	// How often the pipeline re-runs; idempotence guards make extra
	// passes no-ops when nothing changed
	PipelineInterval time.Duration `mapstructure:"pipeline_interval" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
