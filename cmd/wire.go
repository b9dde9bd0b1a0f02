package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/database"
	"github.com/docsage/docsage/internal/knowledge"
	"github.com/docsage/docsage/internal/llm"
)

// runtime bundles the components shared by the chat and ingest commands.
type runtime struct {
	cfg   *config.Config
	pool  *pgxpool.Pool
	g     *genkit.Genkit
	store *knowledge.Store
}

// newRuntime loads configuration, migrates and connects the database,
// initializes Genkit and wires the knowledge store.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := database.Migrate(cfg.MigrateURL(), slog.Default()); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool, err := database.Open(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, err
	}

	g, err := initGenkit(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	embedder, err := provideEmbedder(g, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store := knowledge.New(knowledge.NewQueries(pool), embedder, slog.Default())
	return &runtime{cfg: cfg, pool: pool, g: g, store: store}, nil
}

func (r *runtime) close() {
	r.pool.Close()
}

// initGenkit initializes Genkit, loading the Google AI plugin only when the
// generation or embedding side actually uses it.
func initGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, error) {
	needsGoogle := cfg.ResolvedProvider() == config.ProviderGoogleAI ||
		cfg.EmbedderProvider == config.ProviderGoogleAI

	var g *genkit.Genkit
	if needsGoogle {
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: cfg.GeminiAPIKey}))
	} else {
		g = genkit.Init(ctx)
	}
	if g == nil {
		return nil, errors.New("failed to initialize genkit")
	}
	return g, nil
}

// provideEmbedder returns the embedder for the configured provider. The
// Google embedder comes from the googlegenai plugin; the OpenAI one is a
// local registration over the /embeddings endpoint.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) (ai.Embedder, error) {
	switch cfg.EmbedderProvider {
	case config.ProviderOpenAI:
		model := cfg.EmbedderModel
		if model == config.DefaultEmbedderModel {
			// The configured default is a Gemini model; swap in the OpenAI one.
			model = llm.DefaultOpenAIEmbedderModel
		}
		return llm.DefineOpenAIEmbedder(g, llm.EmbedderOptions{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      model,
			Dimensions: knowledge.VectorDimension,
			Timeout:    cfg.RequestTimeout(),
		}), nil
	case config.ProviderGoogleAI:
		embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
		if embedder == nil {
			return nil, fmt.Errorf("embedder %q not available", cfg.EmbedderModel)
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", cfg.EmbedderProvider)
	}
}
