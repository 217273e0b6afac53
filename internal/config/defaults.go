package config

// ProviderPreset describes the default models for a provider.
type ProviderPreset struct {
	Model          string
	EmbeddingModel string
}

// providerPresets maps each provider to its default model choices.
var providerPresets = map[ProviderType]ProviderPreset{
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderGoogle: {Model: "gemini-1.5-flash", EmbeddingModel: "text-embedding-004"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-1.5-flash",
		EmbeddingProvider: ProviderGoogle,
		EmbeddingModel:    "text-embedding-004",
		ChunkSize:         1000,
		ChunkOverlap:      200,
		MinSimilarity:     0.01,
		MaxResults:        5,
		MaxTurns:          20,
		MaxContextTokens:  4000,
		DataDir:           ".clauselens",
		Port:              8080,
	}
}

// GetPreset returns the default models for the given provider, falling
// back to the Google preset for unknown providers.
func GetPreset(provider ProviderType) ProviderPreset {
	if preset, ok := providerPresets[provider]; ok {
		return preset
	}
	return providerPresets[ProviderGoogle]
}
