package service

import (
	"context"

	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/pkg/events"
	pktNats "resolution-rag-be/pkg/nats"
)

// EventSubscriber is satisfied by the JetStream subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// EventListenerService reacts to domain events published by other replicas:
// an indexed document refreshes the collection list, a feedback event is
// logged for auditing.
type EventListenerService struct {
	subscriber EventSubscriber
	cache      collectionCache
	logger     logger.ILogger
}

func NewEventListenerService(sub EventSubscriber, cache collectionCache, log logger.ILogger) *EventListenerService {
	return &EventListenerService{
		subscriber: sub,
		cache:      cache,
		logger:     log,
	}
}

// Start registers the durable consumers. It returns on the first failed
// subscription.
func (s *EventListenerService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, events.DocumentIndexed, "collections-cache", s.handleDocumentIndexed); err != nil {
		s.logger.Error("EVENTS", "Failed to subscribe", map[string]interface{}{"type": events.DocumentIndexed, "error": err.Error()})
		return err
	}
	if err := s.subscriber.Subscribe(ctx, events.FeedbackRecorded, "feedback-audit", s.handleFeedbackRecorded); err != nil {
		s.logger.Error("EVENTS", "Failed to subscribe", map[string]interface{}{"type": events.FeedbackRecorded, "error": err.Error()})
		return err
	}
	s.logger.Info("EVENTS", "Event listener started", nil)
	return nil
}

func (s *EventListenerService) handleDocumentIndexed(ctx context.Context, event events.Event) error {
	s.cache.Invalidate()
	s.logger.Info("EVENTS", "Collections cache invalidated", event.Payload())
	return nil
}

func (s *EventListenerService) handleFeedbackRecorded(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	if retracted, _ := payload["retracted"].(bool); retracted {
		s.logger.Warn("EVENTS", "Interaction retracted by negative feedback", payload)
		return nil
	}
	s.logger.Debug("EVENTS", "Feedback recorded", payload)
	return nil
}
