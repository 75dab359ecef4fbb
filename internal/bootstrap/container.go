package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"ai-research-agent/internal/config"
	"ai-research-agent/internal/model"
	"ai-research-agent/internal/repository/contract"
	"ai-research-agent/internal/repository/implementation"
	"ai-research-agent/internal/repository/memory"
	"ai-research-agent/internal/service"
	"ai-research-agent/internal/session"
	"ai-research-agent/pkg/database"
	"ai-research-agent/pkg/llm"
	"ai-research-agent/pkg/llm/factory"
	"ai-research-agent/pkg/search"

	pktNats "ai-research-agent/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// ProgressTopic is the in-process topic progress events travel on.
const ProgressTopic = "research.progress"

var ErrUnknownBackend = errors.New("unknown store backend")

type Container struct {
	Config  *config.Config
	Session *session.Session
	Store   contract.DocumentRepository

	Pipeline        service.IPipelineService
	ConsumerService service.IConsumerService

	closers []func()
}

// NewContainer wires the pipeline for one session. Progress lines are written to out.
func NewContainer(cfg *config.Config, sess *session.Session, out io.Writer) (*Container, error) {
	c := &Container{Config: cfg, Session: sess}

	// 1. Document store
	store, closeStore, err := NewDocumentStore(cfg)
	if err != nil {
		return nil, err
	}
	c.Store = store
	c.closers = append(c.closers, closeStore)
	sess.Logger.Info("Bootstrap", "Document store ready", map[string]interface{}{"backend": cfg.Store.Backend})

	// 2. LLM provider
	llmProvider, err := NewLLMProvider(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	sess.Logger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	// 3. Event bus. Publishing blocks until the console consumer acked, so progress
	// lines appear in pipeline order.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NopLogger{},
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var sinks []service.EventSink
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sess.Logger.Warn("Bootstrap", "NATS fan-out disabled", map[string]interface{}{"error": err})
		} else {
			sinks = append(sinks, natsPub)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	publisherService := service.NewPublisherService(ProgressTopic, pubSub, sess.Logger, sinks...)
	c.ConsumerService = service.NewConsumerService(pubSub, ProgressTopic, out)

	// 4. Pipeline
	temperature := cfg.Ai.Temperature
	noteStore := service.NewNoteStoreService(store)
	c.Pipeline = service.NewPipelineService(
		service.NewDecomposerService(llmProvider, sess, temperature),
		service.NewResearchExecutorService(llmProvider, noteStore, publisherService, sess, temperature),
		service.NewReportService(llmProvider, noteStore, store, publisherService, sess, temperature),
		noteStore,
		publisherService,
		sess,
		service.PipelineOptions{
			Concurrency:    cfg.Research.Concurrency,
			NotesRetention: cfg.Store.NotesRetention,
		},
	)

	return c, nil
}

// Start runs the background consumers.
func (c *Container) Start(ctx context.Context) error {
	return c.ConsumerService.Consume(ctx)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// NewLLMProvider builds the configured completion backend. Non-native search goes through
// Tavily when a key is present.
func NewLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	var searcher search.Provider
	if cfg.Keys.Tavily != "" {
		searcher = search.NewTavily(cfg.Keys.Tavily, cfg.Ai.TavilyDepth)
	}

	baseURL := cfg.Ai.MoonshotBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}

	return factory.NewLLMProvider(factory.ProviderConfig{
		Type:     cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  baseURL,
		APIKey:   cfg.Keys.Moonshot,
		Timeout:  cfg.Ai.Timeout,
		Searcher: searcher,
	})
}

// NewDocumentStore opens the configured backend and returns a function releasing it.
func NewDocumentStore(cfg *config.Config) (contract.DocumentRepository, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.StoreFile:
		return implementation.NewFileDocumentRepository(cfg.Store.FilesDir), noop, nil

	case config.StoreMemory:
		return memory.NewDocumentRepository(), noop, nil

	case config.StorePostgres:
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := db.AutoMigrate(&model.Document{}); err != nil {
			return nil, nil, fmt.Errorf("migrate documents table: %w", err)
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return implementation.NewDocumentRepository(db), closeDB, nil

	case config.StoreRedis:
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return implementation.NewRedisDocumentRepository(rdb), func() { _ = rdb.Close() }, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Store.Backend)
}
