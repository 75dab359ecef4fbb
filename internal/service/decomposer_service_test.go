package service

import (
	"context"
	"errors"
	"testing"

	"ai-research-agent/internal/constant"
	"ai-research-agent/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeAcceptsValidResponses(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		topic     string
		subtopics []string
	}{
		{
			name:      "bare json",
			raw:       `{"topic": "Solar Power", "subtopics": ["Panel efficiency trends", "Grid storage options"]}`,
			topic:     "Solar Power",
			subtopics: []string{"Panel efficiency trends", "Grid storage options"},
		},
		{
			name:      "json fence",
			raw:       "Here you go:\n```json\n{\"topic\": \"Solar Power\", \"subtopics\": [\"A b c\", \"D e f\", \"G h i\"]}\n```\nDone.",
			topic:     "Solar Power",
			subtopics: []string{"A b c", "D e f", "G h i"},
		},
		{
			name:      "untagged fence",
			raw:       "```\n{\"topic\": \"T\", \"subtopics\": [\"one\", \"two\", \"three\", \"four\"]}\n```",
			topic:     "T",
			subtopics: []string{"one", "two", "three", "four"},
		},
		{
			name:      "surrounding whitespace is trimmed",
			raw:       "\n\n  {\"topic\": \"  Padded  \", \"subtopics\": [\" x \", \"y\"]}  \n",
			topic:     "Padded",
			subtopics: []string{"x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newScriptedLLM(tt.raw)
			decomposer := NewDecomposerService(fake, session.NewDetached(), constant.ResearchTemperature)

			got, err := decomposer.Decompose(context.Background(), "anything")
			require.NoError(t, err)
			assert.Equal(t, tt.topic, got.Topic)
			assert.Equal(t, tt.subtopics, got.Subtopics)
		})
	}
}

func TestDecomposeRejectsMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "I think you should research housing."},
		{name: "empty", raw: "   "},
		{name: "null", raw: "null"},
		{name: "missing topic", raw: `{"subtopics": ["a", "b"]}`},
		{name: "blank topic", raw: `{"topic": "  ", "subtopics": ["a", "b"]}`},
		{name: "missing subtopics", raw: `{"topic": "T"}`},
		{name: "subtopics not a list", raw: `{"topic": "T", "subtopics": "a, b"}`},
		{name: "one subtopic", raw: `{"topic": "T", "subtopics": ["a"]}`},
		{name: "five subtopics", raw: `{"topic": "T", "subtopics": ["a", "b", "c", "d", "e"]}`},
		{name: "blank subtopic", raw: `{"topic": "T", "subtopics": ["a", " "]}`},
		{name: "duplicate subtopics", raw: `{"topic": "T", "subtopics": ["a", "a"]}`},
		{name: "unclosed fence", raw: "```json\n{\"topic\": \"T\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newScriptedLLM(tt.raw)
			decomposer := NewDecomposerService(fake, session.NewDetached(), constant.ResearchTemperature)

			got, err := decomposer.Decompose(context.Background(), "anything")
			assert.Nil(t, got)

			var decomposeErr *DecomposeError
			require.ErrorAs(t, err, &decomposeErr)
			assert.Equal(t, tt.raw, decomposeErr.Raw)
			assert.ErrorIs(t, err, ErrInvalidDecomposition)
		})
	}
}

func TestDecomposeCompletionFailure(t *testing.T) {
	fake := newScriptedLLM("")
	fake.decomposeErr = errors.New("connection refused")
	decomposer := NewDecomposerService(fake, session.NewDetached(), constant.ResearchTemperature)

	_, err := decomposer.Decompose(context.Background(), "anything")

	var decomposeErr *DecomposeError
	require.ErrorAs(t, err, &decomposeErr)
	assert.Empty(t, decomposeErr.Raw)
	assert.ErrorIs(t, err, ErrCompletionFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDecomposePrompt(t *testing.T) {
	fake := newScriptedLLM(remoteWorkDecomposition)
	decomposer := NewDecomposerService(fake, session.NewDetached(), constant.ResearchTemperature)

	_, err := decomposer.Decompose(context.Background(), "Impact of remote work on urban housing markets")
	require.NoError(t, err)

	calls := fake.callsFor(constant.DecomposeSystemPrompt)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Messages[1].Content, "Request: Impact of remote work on urban housing markets")
	assert.Empty(t, calls[0].Options.SearchQuery)
	assert.Equal(t, constant.ResearchTemperature, calls[0].Options.Temperature)
}
