package service

import (
	"context"
	"fmt"
	"strings"

	"ai-research-agent/internal/constant"
	"ai-research-agent/internal/dto"
	"ai-research-agent/internal/session"
	"ai-research-agent/pkg/events"
	"ai-research-agent/pkg/llm"
	"ai-research-agent/pkg/utils"
)

type IResearchExecutorService interface {
	// Research never returns an error: every problem becomes a failed outcome.
	Research(ctx context.Context, topic, subtopic string) dto.ResearchOutcome
}

type researchExecutorService struct {
	llmProvider llm.LLMProvider
	notes       INoteStoreService
	publisher   IPublisherService
	session     *session.Session
	temperature float64
}

func NewResearchExecutorService(
	llmProvider llm.LLMProvider,
	notes INoteStoreService,
	publisher IPublisherService,
	sess *session.Session,
	temperature float64,
) IResearchExecutorService {
	return &researchExecutorService{
		llmProvider: llmProvider,
		notes:       notes,
		publisher:   publisher,
		session:     sess,
		temperature: temperature,
	}
}

func (s *researchExecutorService) Research(ctx context.Context, topic, subtopic string) dto.ResearchOutcome {
	s.session.Logger.Info("ResearchExecutor", "Researching subtopic", map[string]interface{}{"topic": topic, "subtopic": subtopic})
	s.publisher.Publish(ctx, events.New(events.TypeSubtopicStarted, map[string]interface{}{
		"topic":    topic,
		"subtopic": subtopic,
	}))

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: constant.ResearchSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(constant.ResearchUserPromptTemplate, subtopic)},
	}

	content, err := s.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(s.temperature),
		llm.WithSearchQuery(subtopic),
	)
	if err != nil {
		return s.fail(ctx, topic, subtopic, err.Error())
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return s.fail(ctx, topic, subtopic, "completion returned no text")
	}

	doc, err := s.notes.SaveNote(ctx, topic, subtopic, content)
	if err != nil {
		return s.fail(ctx, topic, subtopic, "save note: "+err.Error())
	}

	location := s.notes.Locate(topic, doc.Key)
	preview := utils.Preview(content, constant.PreviewLength)
	s.session.Logger.Info("ResearchExecutor", "Research note saved", map[string]interface{}{
		"topic":    topic,
		"subtopic": subtopic,
		"location": location,
		"preview":  preview,
	})
	s.publisher.Publish(ctx, events.New(events.TypeSubtopicSucceeded, map[string]interface{}{
		"topic":    topic,
		"subtopic": subtopic,
		"key":      doc.Key,
		"location": location,
		"preview":  preview,
	}))

	return dto.ResearchOutcome{
		Subtopic: subtopic,
		Success:  true,
		Key:      doc.Key,
		Location: location,
		Content:  content,
	}
}

func (s *researchExecutorService) fail(ctx context.Context, topic, subtopic, reason string) dto.ResearchOutcome {
	s.session.Logger.Error("ResearchExecutor", "Research failed", map[string]interface{}{
		"topic":    topic,
		"subtopic": subtopic,
		"reason":   reason,
	})
	s.publisher.Publish(ctx, events.New(events.TypeSubtopicFailed, map[string]interface{}{
		"topic":    topic,
		"subtopic": subtopic,
		"reason":   reason,
	}))
	return dto.ResearchOutcome{Subtopic: subtopic, Reason: reason}
}
