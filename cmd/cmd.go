// Package cmd provides the DocSage CLI commands.
//
// Commands:
//   - chat: interactive grounded question answering (the default)
//   - ingest: load, chunk and embed the documents in the data directory
//   - version: show version and configuration
//
// Signal handling and graceful shutdown are implemented for all commands
// via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/docsage/docsage/internal/log"
)

// Execute is the main entry point for the DocSage CLI.
func Execute() error {
	// A local .env is optional; environment variables win either way.
	_ = godotenv.Load()

	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))

	if len(os.Args) < 2 {
		return runChat()
	}

	switch os.Args[1] {
	case "chat":
		return runChat()
	case "ingest":
		return runIngest()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("DocSage - Grounded question answering over your documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docsage            Start interactive chat (same as 'docsage chat')")
	fmt.Println("  docsage chat       Ask questions grounded in the ingested documents")
	fmt.Println("  docsage ingest     Load, chunk and embed .txt files from the data directory")
	fmt.Println("  docsage --version  Show version and configuration")
	fmt.Println("  docsage --help     Show this help")
	fmt.Println()
	fmt.Println("Chat commands:")
	fmt.Println("  quit, exit         Leave the chat")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY     Gemini API key")
	fmt.Println("  OPENAI_API_KEY     OpenAI API key")
	fmt.Println("  GROQ_API_KEY       Groq API key")
	fmt.Println("  DATABASE_URL       Optional: overrides the postgres_* settings")
	fmt.Println("  DEBUG              Optional: enable debug logging")
	fmt.Println()
	fmt.Println("At least one provider API key is required.")
}
