package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		Provider:              ProviderGoogleAI,
		Temperature:           0,
		MaxTokens:             2048,
		EmbedderProvider:      ProviderGoogleAI,
		EmbedderModel:         DefaultEmbedderModel,
		ChunkSize:             1000,
		ChunkOverlap:          200,
		RetrievalK:            3,
		ContextBudget:         4000,
		DataDir:               "data",
		LogDir:                "/tmp/sessions",
		TimeZone:              "UTC",
		RequestTimeoutSeconds: 60,
		PostgresHost:          "localhost",
		PostgresPort:          5432,
		PostgresUser:          "docsage",
		PostgresDBName:        "docsage",
		PostgresSSLMode:       "disable",
		GeminiAPIKey:          "test-key",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: ErrInvalidChunkSize,
		},
		{
			name:    "overlap equals chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = c.ChunkSize },
			wantErr: ErrInvalidChunkOverlap,
		},
		{
			name:    "overlap exceeds chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = c.ChunkSize + 1 },
			wantErr: ErrInvalidChunkOverlap,
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.ChunkOverlap = -1 },
			wantErr: ErrInvalidChunkOverlap,
		},
		{
			name:    "retrieval k too small",
			mutate:  func(c *Config) { c.RetrievalK = 0 },
			wantErr: ErrInvalidRetrievalK,
		},
		{
			name:    "zero context budget",
			mutate:  func(c *Config) { c.ContextBudget = 0 },
			wantErr: ErrInvalidContextBudget,
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Temperature = 2.5 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "anthropic" },
			wantErr: ErrInvalidProvider,
		},
		{
			name: "no credential at all",
			mutate: func(c *Config) {
				c.Provider = ""
				c.GeminiAPIKey = ""
			},
			wantErr: ErrMissingAPIKey,
		},
		{
			name: "provider selected without key",
			mutate: func(c *Config) {
				c.Provider = ProviderOpenAI
				c.OpenAIAPIKey = ""
			},
			wantErr: ErrMissingAPIKey,
		},
		{
			name:    "groq cannot embed",
			mutate:  func(c *Config) { c.EmbedderProvider = ProviderGroq },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrInvalidDataDir,
		},
		{
			name:    "bad time zone",
			mutate:  func(c *Config) { c.TimeZone = "Mars/Olympus" },
			wantErr: ErrInvalidTimeZone,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.RequestTimeoutSeconds = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "empty postgres host",
			mutate:  func(c *Config) { c.PostgresHost = "" },
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name:    "postgres port out of range",
			mutate:  func(c *Config) { c.PostgresPort = 70000 },
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name:    "empty postgres db name",
			mutate:  func(c *Config) { c.PostgresDBName = "" },
			wantErr: ErrInvalidPostgresDBName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolvedProvider_Precedence(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "g", OpenAIAPIKey: "o", GroqAPIKey: "q"}
	assert.Equal(t, ProviderGoogleAI, cfg.ResolvedProvider())

	cfg.GeminiAPIKey = ""
	assert.Equal(t, ProviderOpenAI, cfg.ResolvedProvider())

	cfg.OpenAIAPIKey = ""
	assert.Equal(t, ProviderGroq, cfg.ResolvedProvider())

	cfg.GroqAPIKey = ""
	assert.Equal(t, "", cfg.ResolvedProvider())

	// Explicit provider wins over key precedence.
	cfg = &Config{Provider: ProviderGroq, GeminiAPIKey: "g", GroqAPIKey: "q"}
	assert.Equal(t, ProviderGroq, cfg.ResolvedProvider())
}

func TestModel_Defaults(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "gemini-2.5-flash", cfg.Model())

	cfg.ModelName = "gemini-2.5-pro"
	assert.Equal(t, "gemini-2.5-pro", cfg.Model())

	cfg = validConfig()
	cfg.Provider = ProviderGroq
	cfg.GroqAPIKey = "q"
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Model())
}
