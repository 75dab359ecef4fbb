package factory

import (
	"fmt"
	"time"

	"ai-research-agent/pkg/llm"
	"ai-research-agent/pkg/llm/moonshot"
	"ai-research-agent/pkg/llm/ollama"
	"ai-research-agent/pkg/search"
)

// ProviderConfig carries everything a provider constructor may need.
type ProviderConfig struct {
	Type     string // "moonshot" | "ollama"
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Searcher search.Provider
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Type {
	case "moonshot", "kimi":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("moonshot provider requires an API key")
		}
		return moonshot.NewMoonshotProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "ollama":
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.Searcher, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Type)
	}
}
