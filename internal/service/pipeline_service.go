package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ai-research-agent/internal/config"
	"ai-research-agent/internal/dto"
	"ai-research-agent/internal/session"
	"ai-research-agent/pkg/events"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type PipelineState string

const (
	StateIdle         PipelineState = "Idle"
	StateDecomposing  PipelineState = "Decomposing"
	StateResearching  PipelineState = "Researching"
	StateSynthesizing PipelineState = "Synthesizing"
	StateDone         PipelineState = "Done"
	StateAborted      PipelineState = "Aborted"
)

type PipelineOptions struct {
	// Concurrency above 1 researches that many subtopics at once.
	Concurrency int
	// NotesRetention is config.RetentionKeep or config.RetentionClear.
	NotesRetention string
}

type IPipelineService interface {
	// Run drives one request to a terminal state. Concurrent calls are serialized.
	Run(ctx context.Context, request string) *dto.PipelineResult
	State() PipelineState
}

type pipelineService struct {
	decomposer IDecomposerService
	executor   IResearchExecutorService
	reporter   IReportService
	notes      INoteStoreService
	publisher  IPublisherService
	session    *session.Session
	opts       PipelineOptions
	tracer     trace.Tracer

	runMu   sync.Mutex
	stateMu sync.RWMutex
	state   PipelineState
}

func NewPipelineService(
	decomposer IDecomposerService,
	executor IResearchExecutorService,
	reporter IReportService,
	notes INoteStoreService,
	publisher IPublisherService,
	sess *session.Session,
	opts PipelineOptions,
) IPipelineService {
	if opts.NotesRetention == "" {
		opts.NotesRetention = config.RetentionKeep
	}
	return &pipelineService{
		decomposer: decomposer,
		executor:   executor,
		reporter:   reporter,
		notes:      notes,
		publisher:  publisher,
		session:    sess,
		opts:       opts,
		tracer:     otel.Tracer("ai-research-agent/pipeline"),
		state:      StateIdle,
	}
}

func (p *pipelineService) State() PipelineState {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

func (p *pipelineService) setState(s PipelineState) {
	p.stateMu.Lock()
	p.state = s
	p.stateMu.Unlock()
}

func (p *pipelineService) Run(ctx context.Context, request string) *dto.PipelineResult {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	result := &dto.PipelineResult{Request: request, StartedAt: time.Now()}
	p.session.Logger.Info("Pipeline", "Research request received", map[string]interface{}{"request": request})
	p.publisher.Publish(ctx, events.New(events.TypeRequestReceived, map[string]interface{}{"request": request}))

	p.transition(ctx, result, StateDecomposing)
	decomposition, err := p.decompose(ctx, request)
	if err != nil {
		p.publisher.Publish(ctx, events.New(events.TypeDecomposeFailed, map[string]interface{}{"reason": err.Error()}))
		return p.abort(ctx, span, result, err)
	}
	result.Topic = decomposition.Topic
	result.Subtopics = append([]string(nil), decomposition.Subtopics...)
	span.SetAttributes(attribute.String("research.topic", result.Topic))
	p.publisher.Publish(ctx, events.New(events.TypeTopicDecomposed, map[string]interface{}{
		"topic":     result.Topic,
		"subtopics": result.Subtopics,
	}))

	if p.opts.NotesRetention == config.RetentionClear {
		if err := p.notes.ClearNotes(ctx, result.Topic); err != nil {
			p.session.Logger.Warn("Pipeline", "Failed to clear previous notes", map[string]interface{}{"topic": result.Topic, "error": err})
		}
	}

	p.transition(ctx, result, StateResearching)
	result.Outcomes = p.research(ctx, result.Topic, result.Subtopics)

	p.transition(ctx, result, StateSynthesizing)
	handle, err := p.synthesize(ctx, result.Topic)
	if err != nil {
		return p.abort(ctx, span, result, err)
	}
	result.Report = handle

	p.finish(ctx, result, StateDone)
	p.publisher.Publish(ctx, events.New(events.TypePipelineCompleted, map[string]interface{}{
		"topic":     result.Topic,
		"location":  handle.Location,
		"succeeded": result.Succeeded(),
		"total":     len(result.Outcomes),
	}))
	return result
}

func (p *pipelineService) decompose(ctx context.Context, request string) (*dto.Decomposition, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.decompose")
	defer span.End()

	decomposition, err := p.decomposer.Decompose(ctx, request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decompose failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("research.subtopics", len(decomposition.Subtopics)))
	return decomposition, nil
}

// research attempts every subtopic and keeps outcomes in decomposition order.
func (p *pipelineService) research(ctx context.Context, topic string, subtopics []string) []dto.ResearchOutcome {
	ctx, span := p.tracer.Start(ctx, "pipeline.research")
	defer span.End()

	outcomes := make([]dto.ResearchOutcome, len(subtopics))
	if p.opts.Concurrency <= 1 {
		for i, subtopic := range subtopics {
			outcomes[i] = p.researchOne(ctx, topic, subtopic)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.opts.Concurrency)
		for i, subtopic := range subtopics {
			g.Go(func() error {
				outcomes[i] = p.researchOne(ctx, topic, subtopic)
				return nil
			})
		}
		_ = g.Wait()
	}

	failed := 0
	for _, o := range outcomes {
		if !o.Success {
			failed++
		}
	}
	span.SetAttributes(
		attribute.Int("research.succeeded", len(outcomes)-failed),
		attribute.Int("research.failed", failed),
	)
	p.session.Logger.Info("Pipeline", "Research phase finished", map[string]interface{}{
		"topic":     topic,
		"succeeded": len(outcomes) - failed,
		"failed":    failed,
	})
	return outcomes
}

func (p *pipelineService) researchOne(ctx context.Context, topic, subtopic string) dto.ResearchOutcome {
	ctx, span := p.tracer.Start(ctx, "pipeline.research.subtopic",
		trace.WithAttributes(attribute.String("research.subtopic", subtopic)))
	defer span.End()

	outcome := p.executor.Research(ctx, topic, subtopic)
	if !outcome.Success {
		span.SetStatus(codes.Error, outcome.Reason)
	}
	return outcome
}

func (p *pipelineService) synthesize(ctx context.Context, topic string) (*dto.ReportHandle, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.synthesize")
	defer span.End()

	handle, err := p.reporter.Synthesize(ctx, topic)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "synthesis failed")
		return nil, err
	}
	return handle, nil
}

func (p *pipelineService) transition(ctx context.Context, result *dto.PipelineResult, next PipelineState) {
	p.setState(next)
	result.States = append(result.States, string(next))
	p.session.Logger.Debug("Pipeline", "State changed", map[string]interface{}{"state": string(next)})
	p.publisher.Publish(ctx, events.New(events.TypeStateChanged, map[string]interface{}{"state": string(next)}))
}

func (p *pipelineService) abort(ctx context.Context, span trace.Span, result *dto.PipelineResult, err error) *dto.PipelineResult {
	result.FailureReason = err.Error()
	span.RecordError(err)
	span.SetStatus(codes.Error, result.FailureReason)

	details := map[string]interface{}{"reason": result.FailureReason, "topic": result.Topic}
	var decomposeErr *DecomposeError
	if errors.As(err, &decomposeErr) && decomposeErr.Raw != "" {
		details["raw"] = decomposeErr.Raw
	}
	p.session.Logger.Error("Pipeline", "Research aborted", details)

	p.finish(ctx, result, StateAborted)
	p.publisher.Publish(ctx, events.New(events.TypePipelineAborted, map[string]interface{}{
		"topic":  result.Topic,
		"reason": result.FailureReason,
	}))
	return result
}

// finish records the terminal state, then readies the controller for the next request.
func (p *pipelineService) finish(ctx context.Context, result *dto.PipelineResult, terminal PipelineState) {
	p.transition(ctx, result, terminal)
	result.FinalState = string(terminal)
	result.FinishedAt = time.Now()
	p.session.Logger.Info("Pipeline", "Research finished", map[string]interface{}{
		"state":     result.FinalState,
		"topic":     result.Topic,
		"succeeded": result.Succeeded(),
		"failed":    result.Failed(),
		"duration":  result.FinishedAt.Sub(result.StartedAt).String(),
	})
	p.setState(StateIdle)
}
