package moonshot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-research-agent/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatAttachesWebSearchTool(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"findings"}}]}`))
	}))
	defer srv.Close()

	p := NewMoonshotProvider("secret", srv.URL, "", 5*time.Second)
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "research"},
	}, llm.WithSearchQuery("remote work"), llm.WithTemperature(0.3))

	require.NoError(t, err)
	assert.Equal(t, "findings", out)
	assert.Equal(t, DefaultModel, got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "web_search", got.Tools[0].Type)
	assert.Equal(t, "remote work", got.Tools[0].WebSearch.SearchQuery)
	require.Len(t, got.Messages, 2)
}

func TestChatWithoutSearchOmitsTools(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := NewMoonshotProvider("secret", srv.URL, "moonshot-v1-8k", time.Second)
	_, err := p.Generate(context.Background(), "hello")
	require.NoError(t, err)

	_, hasTools := raw["tools"]
	assert.False(t, hasTools)
	assert.Equal(t, "moonshot-v1-8k", raw["model"])
}

func TestChatEchoesToolCalls(t *testing.T) {
	calls := 0
	var second chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"choices":[{"finish_reason":"tool_calls","message":{"role":"assistant","content":"","tool_calls":[{"id":"call-1","type":"builtin_function","function":{"name":"$web_search","arguments":"{\"q\":\"x\"}"}}]}}]}`))
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&second))
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"grounded answer"}}]}`))
	}))
	defer srv.Close()

	p := NewMoonshotProvider("secret", srv.URL, "", time.Second)
	out, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}}, llm.WithSearchQuery("x"))
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", out)
	assert.Equal(t, 2, calls)

	require.Len(t, second.Messages, 3)
	assert.Equal(t, "tool", second.Messages[2].Role)
	assert.Equal(t, "call-1", second.Messages[2].ToolCallID)
	assert.Equal(t, `{"q":"x"}`, second.Messages[2].Content)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`},
		{name: "api error", status: http.StatusOK, body: `{"error":{"message":"quota"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "garbage", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewMoonshotProvider("secret", srv.URL, "", time.Second)
			_, err := p.Generate(context.Background(), "hello")
			assert.Error(t, err)
		})
	}
}
