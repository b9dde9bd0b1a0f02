package config

import "fmt"

// validProviders are the supported generation providers.
var validProviders = map[string]bool{
	ProviderGoogleAI: true,
	ProviderOpenAI:   true,
	ProviderGroq:     true,
}

// validEmbedderProviders are the providers with an embedding API.
// Groq exposes no embedding endpoint, so it is generation-only.
var validEmbedderProviders = map[string]bool{
	ProviderGoogleAI: true,
	ProviderOpenAI:   true,
}

// Validate checks the configuration and returns the first violation found.
// All violations are fatal at startup: the process reports the error and
// exits non-zero.
func (c *Config) Validate() error {
	// Chunking. The overlap must leave room for the chunker to advance.
	if c.ChunkSize < 1 || c.ChunkSize > 1<<20 {
		return fmt.Errorf("%w: chunk_size must be between 1 and %d, got %d", ErrInvalidChunkSize, 1<<20, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d with chunk_size %d",
			ErrInvalidChunkOverlap, c.ChunkOverlap, c.ChunkSize)
	}

	// Retrieval
	if c.RetrievalK < 1 || c.RetrievalK > 100 {
		return fmt.Errorf("%w: retrieval_k must be between 1 and 100, got %d", ErrInvalidRetrievalK, c.RetrievalK)
	}
	if c.ContextBudget < 1 {
		return fmt.Errorf("%w: context_budget must be positive, got %d", ErrInvalidContextBudget, c.ContextBudget)
	}

	// Generation
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}
	provider := c.ResolvedProvider()
	if provider == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY, OPENAI_API_KEY or GROQ_API_KEY", ErrMissingAPIKey)
	}
	if !validProviders[provider] {
		return fmt.Errorf("%w: %q, must be one of: googleai, openai, groq", ErrInvalidProvider, provider)
	}
	if c.APIKeyFor(provider) == "" {
		return fmt.Errorf("%w: provider %q selected but its API key is not set", ErrMissingAPIKey, provider)
	}

	// Embedding
	if !validEmbedderProviders[c.EmbedderProvider] {
		return fmt.Errorf("%w: embedder_provider %q, must be one of: googleai, openai", ErrInvalidProvider, c.EmbedderProvider)
	}
	if c.APIKeyFor(c.EmbedderProvider) == "" {
		return fmt.Errorf("%w: embedder_provider %q selected but its API key is not set", ErrMissingAPIKey, c.EmbedderProvider)
	}

	// Session
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidDataDir)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RequestTimeoutSeconds < 1 || c.RequestTimeoutSeconds > 600 {
		return fmt.Errorf("%w: request_timeout_seconds must be between 1 and 600, got %d", ErrInvalidTimeout, c.RequestTimeoutSeconds)
	}

	// Storage
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: postgres_host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: postgres_port must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: postgres_db_name must not be empty", ErrInvalidPostgresDBName)
	}

	return nil
}
