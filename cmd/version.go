package cmd

import (
	"fmt"
	"os"

	"github.com/docsage/docsage/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

func runVersion() {
	fmt.Printf("DocSage %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Configuration: unavailable (%v)\n", err)
		return
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Provider: %s\n", cfg.ResolvedProvider())
	fmt.Printf("  Model: %s\n", cfg.Model())
	fmt.Printf("  Embedder: %s/%s\n", cfg.EmbedderProvider, cfg.EmbedderModel)
	fmt.Printf("  Data directory: %s\n", cfg.DataDir)
	fmt.Printf("  Chunking: size=%d overlap=%d\n", cfg.ChunkSize, cfg.ChunkOverlap)
	fmt.Printf("  Retrieval: top_k=%d context_budget=%d\n", cfg.RetrievalK, cfg.ContextBudget)

	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "GROQ_API_KEY"} {
		fmt.Printf("  %s: %s\n", key, maskKey(os.Getenv(key)))
	}
}

// maskKey shows just enough of a credential to confirm which one is set.
func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) < 8 {
		return "configured"
	}
	return key[:4] + "..." + key[len(key)-4:] + " (configured)"
}
