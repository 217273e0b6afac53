package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .clauselens.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to clauselens! Let's configure your assistant.")
	fmt.Println()

	// 1. LLM provider.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"google", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	preset := GetPreset(provider)

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: preset.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Embedding provider. "none" keeps retrieval lexical.
	embedPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{string(provider), "openai", "google", "ollama", "none"},
	}
	_, embedStr, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding provider selection: %w", err)
	}
	embedProvider := ProviderType(embedStr)

	embedModel := ""
	if embedProvider != ProviderNone {
		embedModelPrompt := promptui.Prompt{
			Label:   "Embedding model",
			Default: GetPreset(embedProvider).EmbeddingModel,
		}
		embedModel, err = embedModelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("embedding model: %w", err)
		}
	}

	// 4. Data directory for the persisted index and history.
	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: ".clauselens",
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 5. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: "8080",
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("must be a port number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = model
	cfg.EmbeddingProvider = embedProvider
	cfg.EmbeddingModel = embedModel
	cfg.DataDir = dataDir
	cfg.Port = port

	// Check for API keys.
	for _, p := range []ProviderType{provider, embedProvider} {
		if envVar := APIKeyEnvVar(p); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running clauselens.\n", envVar)
		}
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}
