package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload interface{}) error
}

type publisherService struct {
	publisher message.Publisher
	topicName string
}

func NewPublisherService(publisher message.Publisher, topicName string) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
	}
}

func (p *publisherService) Publish(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	return p.publisher.Publish(p.topicName, msg)
}
