package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Gemini generates completions through the Genkit googlegenai plugin.
type Gemini struct {
	g           *genkit.Genkit
	model       string
	temperature float32
	maxTokens   int
}

// NewGemini creates a Gemini generator for the named model, e.g.
// "gemini-2.5-flash".
func NewGemini(g *genkit.Genkit, model string, temperature float32, maxTokens int) *Gemini {
	return &Gemini{
		g:           g,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate sends the prompt to Gemini and returns the response text.
func (c *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	opts := []ai.GenerateOption{
		ai.WithModelName("googleai/" + c.model),
		ai.WithPrompt(prompt),
	}
	genCfg := &ai.GenerationCommonConfig{Temperature: float64(c.temperature)}
	if c.maxTokens > 0 {
		genCfg.MaxOutputTokens = c.maxTokens
	}
	opts = append(opts, ai.WithConfig(genCfg))

	resp, err := genkit.Generate(ctx, c.g, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrProvider, err)
	}
	return resp.Text(), nil
}
