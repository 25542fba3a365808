package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	t.Run("document indexed", func(t *testing.T) {
		e := NewDocumentIndexed(7, "2024", 10, 1)
		assert.Equal(t, DocumentIndexed, e.EventType())
		assert.Equal(t, uint(7), e.Payload()["document_id"])
		assert.Equal(t, "2024", e.Payload()["collection_name"])
		assert.False(t, e.Timestamp().IsZero())
	})

	t.Run("feedback recorded", func(t *testing.T) {
		e := NewFeedbackRecorded("s", "i", "NEGATIVE", true)
		assert.Equal(t, FeedbackRecorded, e.EventType())
		assert.Equal(t, true, e.Payload()["retracted"])
	})
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewDocumentIndexed(1, "c", 0, 0)))
}
