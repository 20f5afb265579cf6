package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/codesim/internal/plagiarism"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "codesim")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := validConfig(t)

	assert.Equal(t, "localhost:6379", cfg.RedisHost)
	assert.Equal(t, 24*time.Hour, cfg.StreamRetentionDuration)
	assert.Equal(t, 30*time.Minute, cfg.ComputationTimeout)
	assert.Equal(t, plagiarism.DefaultMaxInputBytes, cfg.MaxInputBytes)
	assert.Equal(t, plagiarism.DefaultMaxTokens, cfg.MaxTokens)
	assert.True(t, cfg.ParallelMetrics)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "2112", cfg.MetricsPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_INPUT_BYTES", "2048")
	t.Setenv("MAX_TOKENS", "300")
	t.Setenv("PARALLEL_METRICS", "false")
	t.Setenv("RESULT_CACHE_TTL", "10m")
	cfg := validConfig(t)

	assert.Equal(t, 2048, cfg.MaxInputBytes)
	assert.Equal(t, 300, cfg.MaxTokens)
	assert.False(t, cfg.ParallelMetrics)
	assert.Equal(t, 10*time.Minute, cfg.ResultCacheTTL)
	assert.Len(t, cfg.ComparatorOptions(), 3)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing mongo uri", func(c *Config) { c.MongoURI = "" }, "MONGO_URI"},
		{"missing db name", func(c *Config) { c.MongoDBName = "" }, "MONGO_DB_NAME"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"zero concurrency", func(c *Config) { c.MaxConcurrentCompute = 0 }, "MAX_CONCURRENT_COMPUTE"},
		{"zero input limit", func(c *Config) { c.MaxInputBytes = 0 }, "MAX_INPUT_BYTES"},
		{"zero token limit", func(c *Config) { c.MaxTokens = 0 }, "MAX_TOKENS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
