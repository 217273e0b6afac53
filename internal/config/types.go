package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"
	ProviderOllama ProviderType = "ollama"
	// ProviderNone disables dense embeddings; retrieval falls back to
	// the lexical index.
	ProviderNone ProviderType = "none"
)

// Config is the top-level clauselens configuration, corresponding to
// .clauselens.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	ChunkSize         int          `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap      int          `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	MinSimilarity     float64      `yaml:"min_similarity" koanf:"min_similarity"`
	MaxResults        int          `yaml:"max_results" koanf:"max_results"`
	MaxTurns          int          `yaml:"max_turns" koanf:"max_turns"`
	MaxContextTokens  int          `yaml:"max_context_tokens" koanf:"max_context_tokens"`
	DataDir           string       `yaml:"data_dir" koanf:"data_dir"`
	Port              int          `yaml:"port" koanf:"port"`
}
