package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/embeddings"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/session"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `clauselens init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on
// config. A nil Embedder (with nil error) means dense embeddings are
// disabled and retrieval uses the lexical fallback.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	if provider == config.ProviderNone {
		return nil, nil
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider).EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	case config.ProviderGoogle:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderGoogle))
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required for Google embeddings")
		}
		return embeddings.NewGoogleEmbedder(apiKey, model), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// sessionOptionsFromConfig assembles session options for the
// configured stack.
func sessionOptionsFromConfig(cfg *config.Config) (session.Options, error) {
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return session.Options{}, fmt.Errorf("creating LLM provider: %w", err)
	}
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		// Embeddings are optional; the lexical index still works.
		fmt.Fprintf(os.Stderr, "Warning: %v\nFalling back to lexical retrieval.\n", err)
		embedder = nil
	}
	return session.Options{
		Provider:         provider,
		Embedder:         embedder,
		ChunkSize:        cfg.ChunkSize,
		ChunkOverlap:     cfg.ChunkOverlap,
		MinSimilarity:    cfg.MinSimilarity,
		MaxResults:       cfg.MaxResults,
		MaxTurns:         cfg.MaxTurns,
		MaxContextTokens: cfg.MaxContextTokens,
	}, nil
}

// indexDir is where the persisted index of a config lives.
func indexDir(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "index")
}

// dbPath is where conversation history is persisted.
func dbPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "clauselens.db")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
