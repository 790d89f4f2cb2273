package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"LLM_PROVIDER", "PARSER_MODE", "BATCH_STORE", "EXPORT_STORE", "LLM_TIMEOUT", "MAX_FILES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ProviderBedrock, cfg.LLM.Provider)
	assert.Equal(t, ParserModeBalanced, cfg.Screening.ParserMode)
	assert.Equal(t, BatchStoreMemory, cfg.Screening.BatchStore)
	assert.Equal(t, ExportStoreNone, cfg.Export.Store)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 20, cfg.Screening.MaxFiles)
	assert.Equal(t, 1, cfg.LLM.RetryMaxAttempts)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", ProviderGemini)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("HISTORY_ENABLED", "true")
	t.Setenv("BATCH_TTL", "not-a-duration")
	t.Setenv("TOP_N", "abc")

	cfg := Load()

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Screening.BatchTTL)
	assert.Equal(t, 5, cfg.Screening.TopN)
	assert.Equal(t, cfg.Gemini.Model, cfg.ModelName())
	require.NoError(t, cfg.Validate())
}

func validConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:         ProviderBedrock,
			ModelID:          "model",
			Region:           "us-east-1",
			MaxTokens:        1024,
			Temperature:      0.3,
			RetryMaxAttempts: 1,
		},
		Screening: ScreeningConfig{
			ParserMode:         ParserModeBalanced,
			HistogramBins:      10,
			TopN:               5,
			MaxFileSize:        1024,
			MaxFiles:           3,
			BatchStore:         BatchStoreMemory,
			BatchStoreCapacity: 10,
		},
		Export: ExportConfig{Store: ExportStoreNone},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "openai" }, errMsg: "unknown LLM_PROVIDER"},
		{name: "gemini without key", mutate: func(c *Config) { c.LLM.Provider = ProviderGemini }, errMsg: "GEMINI_API_KEY"},
		{name: "unknown parser mode", mutate: func(c *Config) { c.Screening.ParserMode = "greedy" }, errMsg: "PARSER_MODE"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Export.Store = ExportStoreS3 }, errMsg: "EXPORT_S3_BUCKET"},
		{name: "unknown export store", mutate: func(c *Config) { c.Export.Store = "ftp" }, errMsg: "EXPORT_STORE"},
		{name: "redis without url", mutate: func(c *Config) { c.Screening.BatchStore = BatchStoreRedis }, errMsg: "REDIS_URL"},
		{name: "zero capacity", mutate: func(c *Config) { c.Screening.BatchStoreCapacity = 0 }, errMsg: "BATCH_STORE_CAPACITY"},
		{name: "temperature out of range", mutate: func(c *Config) { c.LLM.Temperature = 1.5 }, errMsg: "LLM_TEMPERATURE"},
		{name: "no attempts", mutate: func(c *Config) { c.LLM.RetryMaxAttempts = 0 }, errMsg: "LLM_RETRY_MAX_ATTEMPTS"},
		{name: "zero bins", mutate: func(c *Config) { c.Screening.HistogramBins = 0 }, errMsg: "HISTOGRAM_BINS"},
		{name: "zero files", mutate: func(c *Config) { c.Screening.MaxFiles = 0 }, errMsg: "MAX_FILES"},
		{name: "qdrant without embeddings", mutate: func(c *Config) { c.Qdrant.Enabled = true }, errMsg: "QDRANT_ENABLED"},
	}

	require.NoError(t, validConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "runs"}}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=runs sslmode=disable", cfg.GetDatabaseDSN())
}
