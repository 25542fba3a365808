package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"resolution-rag-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler processes one event. A returned error Naks the message.
type EventHandler func(ctx context.Context, event events.Event) error

type Subscriber struct {
	nc   *nats.Conn
	js   jetstream.JetStream
	subs []jetstream.ConsumeContext
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	ensureStream(js)
	return &Subscriber{nc: nc, js: js}, nil
}

type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Decode turns a published message body back into an event.
func Decode(subject string, body []byte) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		env.Type = EventType(subject)
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now()
	}
	return events.BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}

// Subscribe attaches a durable consumer for one event type.
func (s *Subscriber) Subscribe(ctx context.Context, eventType, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: Subject(eventType),
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := Decode(msg.Subject(), msg.Data())
		if err != nil {
			log.Printf("[ERROR] Malformed event on %s: %v", msg.Subject(), err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			log.Printf("[ERROR] Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.subs = append(s.subs, cc)

	log.Printf("[INFO] Subscribed to %s with durable %s", Subject(eventType), durableName)
	return nil
}

func (s *Subscriber) Close() {
	for _, cc := range s.subs {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
