package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlen/starhelm/internal/domain/shared"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 2, cfg.Database.RetentionDays)
	assert.Equal(t, 2, cfg.API.RateLimit.PerSecond)
	assert.Equal(t, 30, cfg.API.RateLimit.PerMinute)
	assert.Equal(t, 6, cfg.API.Retry.Total)
	assert.Equal(t, 1.2, cfg.API.Retry.BackoffFactor)
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.MaxSleep)
	assert.Equal(t, 50*time.Millisecond, cfg.Scheduler.MinSleep)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.FailureBackoff)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
database:
  type: sqlite
  path: ":memory:"
  retention_days: 7
api:
  rate_limit:
    per_second: 4
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Database.RetentionDays)
	assert.Equal(t, 4, cfg.API.RateLimit.PerSecond)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched fields still default
	assert.Equal(t, 30, cfg.API.RateLimit.PerMinute)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
database:
  type: mongodb
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidateConfigRejectsBadLogLevel(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)
	cfg.Logging.Level = "verbose"

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level")
}

func TestAgentTokenRequired(t *testing.T) {
	t.Setenv("AGENT_TOKEN", "")
	_, err := AgentToken()
	require.Error(t, err)
	var validationErr *shared.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "AGENT_TOKEN", validationErr.Field)

	t.Setenv("AGENT_TOKEN", "secret-token")
	token, err := AgentToken()
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)
}
