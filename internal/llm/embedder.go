package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// DefaultOpenAIEmbedderModel supports the dimensions parameter, which lets
// it emit vectors matching the store's column width.
const DefaultOpenAIEmbedderModel = "text-embedding-3-small"

// EmbedderOptions configures an OpenAI-compatible embedding client.
type EmbedderOptions struct {
	APIKey     string
	BaseURL    string // default OpenAIBaseURL
	Model      string // default DefaultOpenAIEmbedderModel
	Dimensions int    // requested vector width
	Timeout    time.Duration
}

// openAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type openAIEmbedder struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// DefineOpenAIEmbedder registers an OpenAI-backed embedder with Genkit under
// the name "openai/<model>" and returns it as an ai.Embedder, so callers use
// the same embedding surface for every provider.
func DefineOpenAIEmbedder(g *genkit.Genkit, opts EmbedderOptions) ai.Embedder {
	if opts.BaseURL == "" {
		opts.BaseURL = OpenAIBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultOpenAIEmbedderModel
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultRequestTimeout
	}
	e := &openAIEmbedder{
		client:     &http.Client{Timeout: opts.Timeout},
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		dimensions: opts.Dimensions,
	}
	return genkit.DefineEmbedder(g, "openai/"+opts.Model, &ai.EmbedderOptions{
		Label:      "OpenAI " + opts.Model,
		Dimensions: opts.Dimensions,
	}, e.embed)
}

func (e *openAIEmbedder) embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	if len(req.Input) == 0 {
		return &ai.EmbedResponse{}, nil
	}

	input := make([]string, len(req.Input))
	for i, doc := range req.Input {
		input[i] = documentText(doc)
	}

	reqBody := embeddingRequest{
		Model:      e.model,
		Input:      input,
		Dimensions: e.dimensions,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrProvider, embResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, string(body))
	}
	if len(embResp.Data) != len(input) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrProvider, len(embResp.Data), len(input))
	}

	embeddings := make([]*ai.Embedding, len(embResp.Data))
	for _, item := range embResp.Data {
		if item.Index < 0 || item.Index >= len(embeddings) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrProvider, item.Index)
		}
		embeddings[item.Index] = &ai.Embedding{Embedding: item.Embedding}
	}
	return &ai.EmbedResponse{Embeddings: embeddings}, nil
}

// documentText joins the text parts of an ai.Document.
func documentText(doc *ai.Document) string {
	var text string
	for _, p := range doc.Content {
		if p.Kind == ai.PartText {
			text += p.Text
		}
	}
	return text
}
