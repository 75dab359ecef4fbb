package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-research-agent/internal/constant"
	"ai-research-agent/internal/dto"
	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/repository/contract"
	"ai-research-agent/internal/session"
	"ai-research-agent/pkg/events"
	"ai-research-agent/pkg/llm"
	"ai-research-agent/pkg/utils"
)

type IReportService interface {
	Synthesize(ctx context.Context, topic string) (*dto.ReportHandle, error)
}

type reportService struct {
	llmProvider llm.LLMProvider
	notes       INoteStoreService
	repo        contract.DocumentRepository
	publisher   IPublisherService
	session     *session.Session
	temperature float64
	now         func() time.Time

	mu     sync.Mutex
	issued map[string]bool
}

func NewReportService(
	llmProvider llm.LLMProvider,
	notes INoteStoreService,
	repo contract.DocumentRepository,
	publisher IPublisherService,
	sess *session.Session,
	temperature float64,
) IReportService {
	return &reportService{
		llmProvider: llmProvider,
		notes:       notes,
		repo:        repo,
		publisher:   publisher,
		session:     sess,
		temperature: temperature,
		now:         time.Now,
		issued:      make(map[string]bool),
	}
}

// FormatReport renders the persisted form of a synthesized report.
func FormatReport(topic, content string, generatedAt time.Time) string {
	return fmt.Sprintf("# Research Report: %s\n\n*Generated: %s*\n\n---\n\n%s",
		topic, generatedAt.Format(constant.DisplayTimeLayout), content)
}

// ReportKeyBase is the report key before any collision suffix.
func ReportKeyBase(topic string, at time.Time) string {
	return utils.Slugify(topic) + "_report_" + at.Format(constant.ReportKeyTimeLayout)
}

func (s *reportService) Synthesize(ctx context.Context, topic string) (*dto.ReportHandle, error) {
	s.publisher.Publish(ctx, events.New(events.TypeReportStarted, map[string]interface{}{"topic": topic}))

	notes, err := s.notes.ListNotes(ctx, topic)
	if err != nil {
		return nil, s.fail(ctx, &SynthesizeError{Topic: topic, Kind: ErrStoreFailed, Cause: err})
	}
	if len(notes) == 0 {
		return nil, s.fail(ctx, &SynthesizeError{Topic: topic, Kind: ErrNoNotes})
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: constant.ReportSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(constant.ReportUserPromptTemplate, topic, JoinNotes(notes))},
	}
	content, err := s.llmProvider.Chat(ctx, messages, llm.WithTemperature(s.temperature))
	if err != nil {
		return nil, s.fail(ctx, &SynthesizeError{Topic: topic, Kind: ErrCompletionFailed, Cause: err})
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, s.fail(ctx, &SynthesizeError{Topic: topic, Kind: ErrCompletionFailed, Cause: errors.New("completion returned no text")})
	}

	now := s.now()
	key := s.reserveKey(ctx, ReportKeyBase(topic, now))
	doc := &entity.Document{
		Collection: constant.CollectionReports,
		Key:        key,
		Content:    FormatReport(topic, content, now),
		Metadata: map[string]string{
			"topic":      topic,
			"note_count": fmt.Sprint(len(notes)),
		},
		CreatedAt: now,
	}
	if err := s.repo.Put(ctx, doc); err != nil {
		return nil, s.fail(ctx, &SynthesizeError{Topic: topic, Kind: ErrStoreFailed, Cause: err})
	}

	handle := &dto.ReportHandle{
		Topic:     topic,
		Key:       key,
		Location:  s.repo.Locate(constant.CollectionReports, key),
		NoteCount: len(notes),
		CreatedAt: now,
	}
	s.session.Logger.Info("ReportSynthesizer", "Report saved", map[string]interface{}{
		"topic":      topic,
		"location":   handle.Location,
		"note_count": handle.NoteCount,
	})
	s.publisher.Publish(ctx, events.New(events.TypeReportSaved, map[string]interface{}{
		"topic":    topic,
		"key":      key,
		"location": handle.Location,
	}))
	return handle, nil
}

// JoinNotes renders notes as the synthesis prompt expects them.
func JoinNotes(notes []*entity.Document) string {
	parts := make([]string, 0, len(notes))
	for _, note := range notes {
		parts = append(parts, fmt.Sprintf("## From: %s.md\n\n%s\n", note.Key, note.Content))
	}
	return strings.Join(parts, constant.NoteSeparator)
}

// reserveKey hands out base, then base_2, base_3 and so on. A key is never issued twice
// per process, and keys already present in the store are skipped.
func (s *reportService) reserveKey(ctx context.Context, base string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n := 1; ; n++ {
		key := base
		if n > 1 {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		if s.issued[key] {
			continue
		}
		existing, err := s.repo.FindOne(ctx, constant.CollectionReports, key)
		if err == nil && existing != nil {
			continue
		}
		s.issued[key] = true
		return key
	}
}

func (s *reportService) fail(ctx context.Context, err *SynthesizeError) error {
	s.session.Logger.Error("ReportSynthesizer", "Report synthesis failed", map[string]interface{}{
		"topic": err.Topic,
		"error": err,
	})
	s.publisher.Publish(ctx, events.New(events.TypeReportFailed, map[string]interface{}{
		"topic":  err.Topic,
		"reason": err.Error(),
	}))
	return err
}
