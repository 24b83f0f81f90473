package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/infrastructure/config"
)

func TestSetDefaults_ProducesValidConfig(t *testing.T) {
	cfg := &config.Config{}

	config.SetDefaults(cfg)

	require.NoError(t, config.ValidateConfig(cfg))
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"virtual-entities", "air-routes", "graph-builder"}, cfg.Pipeline.Workers)
	assert.Equal(t, 2, cfg.Query.MaxAlternatives)
	assert.Equal(t, 30*time.Second, cfg.Query.Timeout)
}

func TestSetDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = "/tmp/test.db"
	cfg.Query.MaxAlternatives = 1

	config.SetDefaults(cfg)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 1, cfg.Query.MaxAlternatives)
}

func TestValidateConfig_RejectsBadDatabaseType(t *testing.T) {
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Database.Type = "oracle"

	err := config.ValidateConfig(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Type")
}

func TestLoadConfigOrDefault_FallsBackOnMissingFile(t *testing.T) {
	cfg := config.LoadConfigOrDefault("/nonexistent/config.yaml")

	require.NotNil(t, cfg)
	assert.Equal(t, "postgres", cfg.Database.Type)
}
