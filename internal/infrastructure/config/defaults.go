package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "sakhatrip"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "sakhatrip"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
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

	// Redis defaults
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.ScanBatchSize == 0 {
		cfg.Redis.ScanBatchSize = 500
	}

	// Pipeline defaults
	if len(cfg.Pipeline.Workers) == 0 {
		cfg.Pipeline.Workers = []string{"virtual-entities", "air-routes", "graph-builder"}
	}
	if cfg.Pipeline.DatasetKeepCount == 0 {
		cfg.Pipeline.DatasetKeepCount = 3
	}
	if cfg.Pipeline.GraphKeepCount == 0 {
		cfg.Pipeline.GraphKeepCount = 3
	}

	// Query defaults
	if cfg.Query.Timeout == 0 {
		cfg.Query.Timeout = 30 * time.Second
	}
	if cfg.Query.MaxAlternatives == 0 {
		cfg.Query.MaxAlternatives = 2
	}

	// Risk defaults
	if cfg.Risk.RateLimit.Requests == 0 {
		cfg.Risk.RateLimit.Requests = 10
	}
	if cfg.Risk.RateLimit.Burst == 0 {
		cfg.Risk.RateLimit.Burst = 20
	}
	if cfg.Risk.Timeout == 0 {
		cfg.Risk.Timeout = 5 * time.Second
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/sakhatrip-daemon.pid"
	}
	if cfg.Daemon.PipelineInterval == 0 {
		cfg.Daemon.PipelineInterval = 15 * time.Minute
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
