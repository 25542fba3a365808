package service

import (
	"context"
	"encoding/json"
	"errors"

	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber      message.Subscriber
	topicName       string
	indexingService IIndexingService
	logger          logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	indexingService IIndexingService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:      subscriber,
		topicName:       topicName,
		indexingService: indexingService,
		logger:          logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage acks messages that can never succeed and nacks the rest
// for redelivery.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal message", map[string]interface{}{"error": err})
		msg.Ack()
		return
	}

	cs.logger.Info("CONSUMER", "Indexing document", map[string]interface{}{"document_id": payload.DocumentId, "file": payload.FileName})

	_, err := cs.indexingService.IndexDocument(ctx, payload.DocumentId)
	switch {
	case err == nil:
		msg.Ack()
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrUnreadableDocument), errors.Is(err, ErrIndexingFailed):
		cs.logger.Error("CONSUMER", "Document not indexed", map[string]interface{}{"document_id": payload.DocumentId, "error": err})
		msg.Ack()
	case ctx.Err() != nil:
		msg.Nack()
	default:
		cs.logger.Error("CONSUMER", "Indexing failed, will retry", map[string]interface{}{"document_id": payload.DocumentId, "error": err})
		msg.Nack()
	}
}
