package events

import (
	"context"
	"time"
)

const (
	DocumentIndexed  = "DOCUMENT_INDEXED"
	FeedbackRecorded = "FEEDBACK_RECORDED"
)

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher sends events to the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// NewDocumentIndexed reports the outcome of indexing one document.
func NewDocumentIndexed(documentId uint, collection string, stored, failed int) BaseEvent {
	return BaseEvent{
		Type: DocumentIndexed,
		Data: map[string]interface{}{
			"document_id":     documentId,
			"collection_name": collection,
			"stored_chunks":   stored,
			"failed_chunks":   failed,
		},
		OccurredAt: time.Now(),
	}
}

// NewFeedbackRecorded reports feedback on an interaction.
func NewFeedbackRecorded(sessionId, interactionId, sentiment string, retracted bool) BaseEvent {
	return BaseEvent{
		Type: FeedbackRecorded,
		Data: map[string]interface{}{
			"user_session_uuid": sessionId,
			"interaction_uuid":  interactionId,
			"sentiment":         sentiment,
			"retracted":         retracted,
		},
		OccurredAt: time.Now(),
	}
}
