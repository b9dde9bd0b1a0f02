package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/genkit"

	"github.com/docsage/docsage/internal/config"
)

// ErrProvider marks failures originating at the model provider, such as
// rejected credentials, rate limits or 5xx responses. Callers can show a
// generic message for these without inspecting provider-specific detail.
var ErrProvider = errors.New("model provider request failed")

// Generator produces a completion for a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New constructs the Generator for the configured provider. g is only
// required for the Gemini provider and may be nil otherwise.
func New(cfg *config.Config, g *genkit.Genkit) (Generator, error) {
	provider := cfg.ResolvedProvider()
	switch provider {
	case config.ProviderGoogleAI:
		if g == nil {
			return nil, errors.New("genkit instance required for the googleai provider")
		}
		return NewGemini(g, cfg.Model(), cfg.Temperature, cfg.MaxTokens), nil
	case config.ProviderOpenAI:
		return NewOpenAI(Options{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.Model(),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.RequestTimeout(),
		}), nil
	case config.ProviderGroq:
		return NewOpenAI(Options{
			APIKey:      cfg.GroqAPIKey,
			BaseURL:     GroqBaseURL,
			Model:       cfg.Model(),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.RequestTimeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
