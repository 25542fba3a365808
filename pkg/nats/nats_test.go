package nats

import (
	"encoding/json"
	"testing"
	"time"

	"resolution-rag-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRoundTrip(t *testing.T) {
	assert.Equal(t, "events.DOCUMENT_INDEXED", Subject(events.DocumentIndexed))
	assert.Equal(t, events.DocumentIndexed, EventType(Subject(events.DocumentIndexed)))
}

func TestDecode(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		body, err := json.Marshal(map[string]interface{}{
			"type":        events.FeedbackRecorded,
			"occurred_at": at,
			"data":        map[string]interface{}{"retracted": true},
		})
		require.NoError(t, err)

		e, err := Decode("events.FEEDBACK_RECORDED", body)
		require.NoError(t, err)
		assert.Equal(t, events.FeedbackRecorded, e.EventType())
		assert.True(t, e.Timestamp().Equal(at))
		assert.Equal(t, true, e.Payload()["retracted"])
	})

	t.Run("type from subject", func(t *testing.T) {
		e, err := Decode("events.DOCUMENT_INDEXED", []byte(`{"data":{}}`))
		require.NoError(t, err)
		assert.Equal(t, events.DocumentIndexed, e.EventType())
		assert.False(t, e.Timestamp().IsZero())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode("events.X", []byte("{"))
		assert.Error(t, err)
	})
}
