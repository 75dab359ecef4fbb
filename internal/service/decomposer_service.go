package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-research-agent/internal/constant"
	"ai-research-agent/internal/dto"
	"ai-research-agent/internal/session"
	"ai-research-agent/pkg/llm"
	"ai-research-agent/pkg/utils"

	"github.com/go-playground/validator/v10"
)

type IDecomposerService interface {
	Decompose(ctx context.Context, request string) (*dto.Decomposition, error)
}

type decomposerService struct {
	llmProvider llm.LLMProvider
	validate    *validator.Validate
	session     *session.Session
	temperature float64
}

func NewDecomposerService(llmProvider llm.LLMProvider, sess *session.Session, temperature float64) IDecomposerService {
	return &decomposerService{
		llmProvider: llmProvider,
		validate:    NewDecompositionValidator(),
		session:     sess,
		temperature: temperature,
	}
}

// NewDecompositionValidator returns a validator that understands the "notblank" tag.
func NewDecompositionValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func (s *decomposerService) Decompose(ctx context.Context, request string) (*dto.Decomposition, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: constant.DecomposeSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(constant.DecomposeUserPromptTemplate, request)},
	}

	raw, err := s.llmProvider.Chat(ctx, messages, llm.WithTemperature(s.temperature))
	if err != nil {
		s.session.Logger.Error("Decomposer", "Completion failed", map[string]interface{}{"error": err})
		return nil, &DecomposeError{Err: fmt.Errorf("%w: %v", ErrCompletionFailed, err)}
	}

	decomposition, err := s.parse(raw)
	if err != nil {
		s.session.Logger.Error("Decomposer", "Rejected decomposition", map[string]interface{}{"error": err, "raw": raw})
		return nil, &DecomposeError{Raw: raw, Err: err}
	}

	s.session.Logger.Info("Decomposer", "Request decomposed", map[string]interface{}{
		"topic":     decomposition.Topic,
		"subtopics": decomposition.Subtopics,
	})
	return decomposition, nil
}

func (s *decomposerService) parse(raw string) (*dto.Decomposition, error) {
	body := utils.ExtractFencedBlock(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidDecomposition)
	}

	var decomposition dto.Decomposition
	if err := json.Unmarshal([]byte(body), &decomposition); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDecomposition, err)
	}

	decomposition.Topic = strings.TrimSpace(decomposition.Topic)
	for i, subtopic := range decomposition.Subtopics {
		decomposition.Subtopics[i] = strings.TrimSpace(subtopic)
	}

	if err := s.validate.Struct(&decomposition); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("%w: field %s failed %q", ErrInvalidDecomposition, fe.Namespace(), fe.Tag())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDecomposition, err)
	}
	return &decomposition, nil
}
