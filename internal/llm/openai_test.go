package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_Generate(t *testing.T) {
	var gotReq chatCompletionRequest
	var gotAuth string
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "the answer"}},
			},
		})
	})

	client := NewOpenAI(Options{
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Model:       "gpt-4o-mini",
		Temperature: 0,
		MaxTokens:   256,
	})

	answer, err := client.Generate(context.Background(), "what is alpha?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Equal(t, 256, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "what is alpha?", gotReq.Messages[0].Content)
}

func TestOpenAI_Generate_ProviderError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
			},
		},
		{
			name: "rate limited without payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{}`))
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.handler)
			client := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL, Model: "m"})

			_, err := client.Generate(context.Background(), "q")
			require.ErrorIs(t, err, ErrProvider)
		})
	}
}

func TestOpenAI_Generate_ContextCancelled(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	client := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL, Model: "m"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "q")
	require.ErrorIs(t, err, ErrProvider)

	// The cancellation must stay visible through the wrap so callers can
	// tell an interrupt apart from a provider failure.
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIEmbedder_Embed_ContextCancelled(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	e := &openAIEmbedder{
		client:     srv.Client(),
		baseURL:    srv.URL,
		apiKey:     "k",
		model:      "text-embedding-3-small",
		dimensions: 3,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.embed(ctx, &ai.EmbedRequest{Input: []*ai.Document{ai.DocumentFromText("x", nil)}})
	require.ErrorIs(t, err, ErrProvider)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var gotReq embeddingRequest
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Return out of order to exercise index-based placement.
		_, _ = w.Write([]byte(`{"data":[
			{"embedding":[0.4,0.5,0.6],"index":1},
			{"embedding":[0.1,0.2,0.3],"index":0}
		]}`))
	})

	e := &openAIEmbedder{
		client:     srv.Client(),
		baseURL:    srv.URL,
		apiKey:     "k",
		model:      "text-embedding-3-small",
		dimensions: 3,
	}

	resp, err := e.embed(context.Background(), &ai.EmbedRequest{
		Input: []*ai.Document{
			ai.DocumentFromText("first chunk", nil),
			ai.DocumentFromText("second chunk", nil),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"first chunk", "second chunk"}, gotReq.Input)
	assert.Equal(t, 3, gotReq.Dimensions)
	require.Len(t, resp.Embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, resp.Embeddings[0].Embedding)
	assert.Equal(t, []float32{0.4, 0.5, 0.6}, resp.Embeddings[1].Embedding)
}

func TestOpenAIEmbedder_Embed_CountMismatch(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1],"index":0}]}`))
	})
	e := &openAIEmbedder{client: srv.Client(), baseURL: srv.URL, apiKey: "k", model: "m"}

	_, err := e.embed(context.Background(), &ai.EmbedRequest{
		Input: []*ai.Document{
			ai.DocumentFromText("a", nil),
			ai.DocumentFromText("b", nil),
		},
	})
	require.ErrorIs(t, err, ErrProvider)
}

func TestOpenAIEmbedder_Embed_ErrorPayload(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	})
	e := &openAIEmbedder{client: srv.Client(), baseURL: srv.URL, apiKey: "k", model: "m"}

	_, err := e.embed(context.Background(), &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText("a", nil)},
	})
	require.ErrorIs(t, err, ErrProvider)
}
