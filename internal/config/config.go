// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (secrets and runtime overrides)
//  2. Config file (~/.docsage/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Generation: provider selection, model name, temperature, max tokens
//   - Embedding: embedder provider and model (see Vector dimension note in rag)
//   - Retrieval: chunk size/overlap, retrieval k, prompt context budget
//   - Storage: PostgreSQL connection for the vector store (see storage.go)
//   - Session: data directory, session log directory, time zone
//
// Secrets (API keys) are read from the environment only and never written to
// the config file. Validation lives in validation.go and is fail-fast: an
// invalid configuration aborts startup with a non-zero exit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidChunkSize indicates chunk_size is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidChunkOverlap indicates chunk_overlap is negative or not
	// smaller than chunk_size.
	ErrInvalidChunkOverlap = errors.New("invalid chunk overlap")

	// ErrInvalidRetrievalK indicates retrieval_k is out of range.
	ErrInvalidRetrievalK = errors.New("invalid retrieval k")

	// ErrInvalidContextBudget indicates context_budget is not positive.
	ErrInvalidContextBudget = errors.New("invalid context budget")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidProvider indicates the generation or embedding provider is
	// not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrMissingAPIKey indicates no credential is available for the selected
	// provider.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidTimeZone indicates time_zone cannot be loaded.
	ErrInvalidTimeZone = errors.New("invalid time zone")

	// ErrInvalidTimeout indicates request_timeout_seconds is out of range.
	ErrInvalidTimeout = errors.New("invalid request timeout")

	// ErrInvalidDataDir indicates data_dir is empty.
	ErrInvalidDataDir = errors.New("invalid data directory")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

// Generation provider identifiers used in Config.Provider.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
	ProviderGroq     = "groq"
)

// Default model per generation provider, applied when model_name is empty.
var defaultModels = map[string]string{
	ProviderGoogleAI: "gemini-2.5-flash",
	ProviderOpenAI:   "gpt-4o-mini",
	ProviderGroq:     "llama-3.1-8b-instant",
}

// DefaultEmbedderModel is the default Gemini embedding model. Its output
// dimension must match the vector column in the chunks table.
const DefaultEmbedderModel = "text-embedding-004"

// Config stores application configuration.
// Secrets are populated from the environment via bindEnvVariables.
type Config struct {
	// Generation
	Provider    string  `mapstructure:"provider"`   // "googleai", "openai", "groq"; empty = pick by available key
	ModelName   string  `mapstructure:"model_name"` // empty = provider default
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// Embedding
	EmbedderProvider string `mapstructure:"embedder_provider"` // "googleai" or "openai"
	EmbedderModel    string `mapstructure:"embedder_model"`

	// Retrieval
	ChunkSize     int  `mapstructure:"chunk_size"`
	ChunkOverlap  int  `mapstructure:"chunk_overlap"`
	RetrievalK    int  `mapstructure:"retrieval_k"`
	ContextBudget int  `mapstructure:"context_budget"` // excerpt character budget for the prompt
	SkipUnchanged bool `mapstructure:"skip_unchanged"` // content-hash idempotent re-ingest

	// Session
	DataDir  string `mapstructure:"data_dir"`
	LogDir   string `mapstructure:"log_dir"`
	TimeZone string `mapstructure:"time_zone"`

	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`

	// Storage (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Secrets (environment only)
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	GroqAPIKey   string `mapstructure:"groq_api_key"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".docsage")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v, filepath.Join(configDir, "sessions"))
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing configuration file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper, defaultLogDir string) {
	// Generation defaults. Temperature 0 keeps answers grounded in the
	// retrieved excerpts.
	v.SetDefault("provider", "")
	v.SetDefault("model_name", "")
	v.SetDefault("temperature", 0.0)
	v.SetDefault("max_tokens", 2048)

	// Embedding defaults
	v.SetDefault("embedder_provider", ProviderGoogleAI)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	// Retrieval defaults
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("chunk_overlap", 200)
	v.SetDefault("retrieval_k", 3)
	v.SetDefault("context_budget", 4000)
	v.SetDefault("skip_unchanged", true)

	// Session defaults
	v.SetDefault("data_dir", "data")
	v.SetDefault("log_dir", defaultLogDir)
	v.SetDefault("time_zone", "Local")
	v.SetDefault("request_timeout_seconds", 60)

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "docsage")
	v.SetDefault("postgres_password", "docsage_dev_password")
	v.SetDefault("postgres_db_name", "docsage")
	v.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds secrets explicitly. Only credentials come from the
// environment; everything else belongs in the config file.
func bindEnvVariables(v *viper.Viper) {
	// Errors are only possible with an empty key list; keys are hardcoded.
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("groq_api_key", "GROQ_API_KEY")
	_ = v.BindEnv("postgres_password", "DOCSAGE_POSTGRES_PASSWORD")
}

// ResolvedProvider returns the configured generation provider, or, when
// provider is unset, the first provider with an available credential
// (googleai, then openai, then groq). Returns "" when no credential exists.
func (c *Config) ResolvedProvider() string {
	if c.Provider != "" {
		return c.Provider
	}
	switch {
	case c.GeminiAPIKey != "":
		return ProviderGoogleAI
	case c.OpenAIAPIKey != "":
		return ProviderOpenAI
	case c.GroqAPIKey != "":
		return ProviderGroq
	default:
		return ""
	}
}

// Model returns the generation model name, falling back to the resolved
// provider's default when model_name is unset.
func (c *Config) Model() string {
	if c.ModelName != "" {
		return c.ModelName
	}
	return defaultModels[c.ResolvedProvider()]
}

// APIKeyFor returns the credential for the given provider.
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case ProviderGoogleAI:
		return c.GeminiAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGroq:
		return c.GroqAPIKey
	default:
		return ""
	}
}

// RequestTimeout returns the timeout applied to each external provider call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Location loads the configured time zone for session timestamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTimeZone, c.TimeZone, err)
	}
	return loc, nil
}
