package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-research-agent/internal/constant"
	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/repository/contract"
	"ai-research-agent/pkg/events"
	"ai-research-agent/pkg/llm"
)

type recordedCall struct {
	Messages []llm.Message
	Options  llm.Options
}

// scriptedLLM answers by prompt kind: decomposition, per-subtopic research and report.
type scriptedLLM struct {
	mu sync.Mutex

	decomposeRaw string
	decomposeErr error

	research    map[string]string
	researchErr map[string]error

	report    string
	reportErr error

	calls []recordedCall
}

func newScriptedLLM(decomposeRaw string) *scriptedLLM {
	return &scriptedLLM{
		decomposeRaw: decomposeRaw,
		research:     map[string]string{},
		researchErr:  map[string]error{},
		report:       "## Summary\n\nSynthesized findings.",
	}
}

func (f *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{}, options...)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{Messages: append([]llm.Message(nil), history...), Options: opts})

	if len(history) == 0 {
		return "", errors.New("empty history")
	}
	switch history[0].Content {
	case constant.DecomposeSystemPrompt:
		return f.decomposeRaw, f.decomposeErr
	case constant.ResearchSystemPrompt:
		if err := f.researchErr[opts.SearchQuery]; err != nil {
			return "", err
		}
		if text, ok := f.research[opts.SearchQuery]; ok {
			return text, nil
		}
		return fmt.Sprintf("Findings on %s. Source: https://example.org/%d", opts.SearchQuery, len(f.calls)), nil
	case constant.ReportSystemPrompt:
		return f.report, f.reportErr
	}
	return "", errors.New("unexpected prompt")
}

func (f *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (f *scriptedLLM) callsFor(systemPrompt string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if len(c.Messages) > 0 && c.Messages[0].Content == systemPrompt {
			out = append(out, c)
		}
	}
	return out
}

// recordingPublisher keeps every event in publish order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

func (r *recordingPublisher) ofType(eventType string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// failingRepository wraps a repository and fails the selected operations.
type failingRepository struct {
	contract.DocumentRepository
	putErr  error
	listErr error
}

func (r *failingRepository) Put(ctx context.Context, doc *entity.Document) error {
	if r.putErr != nil {
		return r.putErr
	}
	return r.DocumentRepository.Put(ctx, doc)
}

func (r *failingRepository) ListAll(ctx context.Context, collection string) ([]*entity.Document, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.DocumentRepository.ListAll(ctx, collection)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

const remoteWorkDecomposition = `{
  "topic": "Remote Work and Urban Housing",
  "subtopics": [
    "Remote work adoption trends",
    "Urban housing price shifts",
    "City migration patterns"
  ]
}`
