package bootstrap

import (
	"bytes"
	"context"
	"testing"

	"ai-research-agent/internal/config"
	"ai-research-agent/internal/session"
	"ai-research-agent/pkg/llm/moonshot"
	"ai-research-agent/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentStore(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr error
	}{
		{name: "file", backend: config.StoreFile},
		{name: "memory", backend: config.StoreMemory},
		{name: "unknown", backend: "s3", wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Store: config.StoreConfig{Backend: tt.backend, FilesDir: t.TempDir()}}
			store, closeStore, err := NewDocumentStore(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer closeStore()
			assert.NotNil(t, store)
		})
	}
}

func TestNewLLMProviderSelectsBackend(t *testing.T) {
	cfg := &config.Config{
		Keys: config.APIKeys{Moonshot: "sk-test"},
		Ai:   config.AIConfig{LLMProvider: "moonshot", MoonshotBaseURL: "http://localhost"},
	}
	p, err := NewLLMProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &moonshot.MoonshotProvider{}, p)

	cfg.Ai.LLMProvider = "ollama"
	cfg.Keys.Tavily = "tvly-test"
	p, err = NewLLMProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaProvider{}, p)

	cfg.Ai.LLMProvider = "moonshot"
	cfg.Keys.Moonshot = ""
	_, err = NewLLMProvider(cfg)
	assert.Error(t, err)
}

func TestNewContainer(t *testing.T) {
	cfg := &config.Config{
		Ai:       config.AIConfig{LLMProvider: "ollama", OllamaBaseURL: "http://localhost:11434", Temperature: 0.3},
		Store:    config.StoreConfig{Backend: config.StoreMemory, NotesRetention: config.RetentionKeep},
		Research: config.ResearchConfig{Concurrency: 1},
	}

	var out bytes.Buffer
	c, err := NewContainer(cfg, session.NewDetached(), &out)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	assert.NotNil(t, c.Pipeline)
	assert.NotNil(t, c.Store)
	assert.Equal(t, "Idle", string(c.Pipeline.State()))
}
