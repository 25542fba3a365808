package service

import (
	"context"
	"testing"

	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventListenerService_Start(t *testing.T) {
	sub := &fakeEventSubscriber{}
	cache := &countingCache{}
	listener := NewEventListenerService(sub, cache, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, listener.Start(ctx))
	require.Contains(t, sub.handlers, events.DocumentIndexed)
	require.Contains(t, sub.handlers, events.FeedbackRecorded)

	require.NoError(t, sub.handlers[events.DocumentIndexed](ctx, events.NewDocumentIndexed(1, "general", 4, 0)))
	assert.Equal(t, 1, cache.invalidations())

	for _, retracted := range []bool{true, false} {
		err := sub.handlers[events.FeedbackRecorded](ctx, events.NewFeedbackRecorded("s1", "i1", "NEGATIVE", retracted))
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, cache.invalidations())
}

func TestEventListenerService_StartFailsOnSubscribeError(t *testing.T) {
	sub := &fakeEventSubscriber{failOn: events.FeedbackRecorded}
	listener := NewEventListenerService(sub, &countingCache{}, logger.NewNopLogger())

	assert.Error(t, listener.Start(context.Background()))
	assert.Contains(t, sub.handlers, events.DocumentIndexed)
}
