package config

import "time"

// RedisConfig holds hot KV store connection configuration. The
// materialized graph lives here under the "graph:" prefix.
type RedisConfig struct {
	// Address in host:port form
	Addr string `mapstructure:"addr" validate:"required"`

	// Logical database number
	DB int `mapstructure:"db" validate:"min=0,max=15"`

	Password string `mapstructure:"password"`

	// Connection pool size, zero means go-redis default
	PoolSize int `mapstructure:"pool_size" validate:"min=0"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Batch size for SCAN-based deletions
	ScanBatchSize int `mapstructure:"scan_batch_size" validate:"min=0"`
}
