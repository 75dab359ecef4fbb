package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-research-agent/internal/pkg/logger"
	"ai-research-agent/internal/session"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExitCommand(t *testing.T) {
	for _, line := range []string{"exit", "QUIT", " q ", "Exit"} {
		assert.True(t, isExitCommand(line), line)
	}
	for _, line := range []string{"", "quite", "exit now", "research q"} {
		assert.False(t, isExitCommand(line), line)
	}
}

func TestTranscriptPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, session.TranscriptFileName)
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	got, err := transcriptPath(dir)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	got, err = transcriptPath(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	_, err = transcriptPath(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestPrintEntry(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	printEntry(&out, logger.LogEntry{
		Timestamp: "2024-03-05T14:07:09.000Z",
		Level:     "ERROR",
		Module:    "ResearchExecutor",
		Message:   "Research failed",
		Details:   map[string]interface{}{"subtopic": "Rent trends"},
	})
	assert.Equal(t, "2024-03-05T14:07:09.000Z ERROR [ResearchExecutor] Research failed {\"subtopic\":\"Rent trends\"}\n", out.String())
}

func TestReadLines(t *testing.T) {
	var got []string
	for in := range readLines(context.Background(), strings.NewReader("first request\n\nexit\n")) {
		require.NoError(t, in.err)
		got = append(got, in.text)
	}
	assert.Equal(t, []string{"first request", "", "exit"}, got)
}

// endlessInput never reaches EOF.
type endlessInput struct{}

func (endlessInput) Read(p []byte) (int, error) {
	for i := range p {
		if i%2 == 0 {
			p[i] = 'x'
		} else {
			p[i] = '\n'
		}
	}
	return len(p) - len(p)%2, nil
}

func TestReadLinesStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	input := readLines(ctx, endlessInput{})

	first := <-input
	assert.Equal(t, "x", first.text)
	cancel()

	closed := make(chan struct{})
	go func() {
		for range input {
		}
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("reader goroutine kept sending after cancel")
	}
}
