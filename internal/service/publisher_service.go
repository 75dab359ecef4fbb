package service

import (
	"context"
	"encoding/json"

	"ai-research-agent/internal/pkg/logger"
	"ai-research-agent/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventSink receives a copy of every progress event. *nats.Publisher implements it.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type IPublisherService interface {
	// Publish never fails the caller; delivery problems are only logged.
	Publish(ctx context.Context, event events.Event)
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	sinks     []EventSink
	logger    logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, log logger.ILogger, sinks ...EventSink) IPublisherService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		sinks:     sinks,
		logger:    log,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) {
	if ps.publisher != nil {
		payload, err := json.Marshal(events.BaseEvent{
			Type:       event.EventType(),
			Data:       event.Payload(),
			OccurredAt: event.Timestamp(),
		})
		if err != nil {
			ps.logger.Warn("ProgressPublisher", "Failed to encode event", map[string]interface{}{"type": event.EventType(), "error": err})
		} else {
			msg := message.NewMessage(watermill.NewUUID(), payload)
			if err := ps.publisher.Publish(ps.topicName, msg); err != nil {
				ps.logger.Warn("ProgressPublisher", "Failed to publish event", map[string]interface{}{"type": event.EventType(), "error": err})
			}
		}
	}

	for _, sink := range ps.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			ps.logger.Warn("ProgressPublisher", "Failed to forward event", map[string]interface{}{"type": event.EventType(), "error": err})
		}
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, events.Event) {}
