package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider stores query embeddings in Redis keyed by backend, model,
// task type and a hash of the text. Cache failures fall through to the
// provider.
type CachedProvider struct {
	inner  EmbeddingProvider
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCachedProvider(inner EmbeddingProvider, rdb *redis.Client, backend, model string, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		rdb:    rdb,
		prefix: "embedding:" + backend + ":" + model + ":",
		ttl:    ttl,
	}
}

func (p *CachedProvider) Key(text, taskType string) string {
	sum := sha256.Sum256([]byte(text))
	return p.prefix + taskType + ":" + hex.EncodeToString(sum[:])
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := p.Key(text, taskType)

	raw, err := p.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var values []float32
		if jsonErr := json.Unmarshal(raw, &values); jsonErr == nil && len(values) > 0 {
			return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}, nil
		}
	case !errors.Is(err, redis.Nil):
		log.Printf("[WARN] Embedding cache read failed: %v", err)
	}

	res, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(res.Vector()); jsonErr == nil {
		if setErr := p.rdb.Set(ctx, key, data, p.ttl).Err(); setErr != nil {
			log.Printf("[WARN] Embedding cache write failed: %v", setErr)
		}
	}
	return res, nil
}
