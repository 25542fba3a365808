package websocket

import (
	"context"
	"testing"
	"time"

	"resolution-rag-be/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func streamingClient(h *Hub, sessionID string) (*Client, context.Context) {
	c := newClient(h, nil)
	ctx, cancel := context.WithCancel(c.ctx)
	c.sessionID = sessionID
	c.streamCancel = cancel
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c, ctx
}

func TestHub_ClaimCancelsOtherStreamsOfSession(t *testing.T) {
	h := NewHub(nil, nil, nil, logger.NewNopLogger())

	owner, ownerCtx := streamingClient(h, "s-1")
	other, otherCtx := streamingClient(h, "s-1")
	_, unrelatedCtx := streamingClient(h, "s-2")

	h.claim(owner, "s-1")

	assert.NoError(t, ownerCtx.Err())
	assert.ErrorIs(t, otherCtx.Err(), context.Canceled)
	assert.NoError(t, unrelatedCtx.Err())
	assert.False(t, other.cancelStream(), "cancelled stream is forgotten")
	assert.Equal(t, 3, h.Len())
}

func TestHub_ClaimPropagatesThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	newRdb := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		return rdb
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := NewHub(newRdb(), nil, nil, logger.NewNopLogger())
	b := NewHub(newRdb(), nil, nil, logger.NewNopLogger())
	go a.Run(ctx)
	go b.Run(ctx)

	_, remoteCtx := streamingClient(b, "s-1")
	_, localCtx := streamingClient(a, "s-2")

	assert.Eventually(t, func() bool {
		a.claim(nil, "s-1")
		return remoteCtx.Err() != nil
	}, 2*time.Second, 20*time.Millisecond)
	assert.NoError(t, localCtx.Err())
}

func TestClient_SessionIDDefaultsEmpty(t *testing.T) {
	h := NewHub(nil, nil, nil, logger.NewNopLogger())
	c := newClient(h, nil)
	assert.Equal(t, "", c.SessionID())
	assert.False(t, c.cancelStream())
	assert.NotEmpty(t, c.ID)
}
