package embedding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrEmbeddingFailed is returned once every attempt has failed.
var ErrEmbeddingFailed = errors.New("embedding generation failed")

// RetryPolicy bounds how often a provider call is attempted and how long to
// wait between attempts.
type RetryPolicy struct {
	MaxAttempts uint
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// RetryingProvider decorates a provider with a RetryPolicy.
type RetryingProvider struct {
	inner  EmbeddingProvider
	policy RetryPolicy
}

func WithRetry(inner EmbeddingProvider, policy RetryPolicy) *RetryingProvider {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = 1
	}
	return &RetryingProvider{inner: inner, policy: policy}
}

func (p *RetryingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	attempt := 0
	operation := func() (*EmbeddingResponse, error) {
		attempt++
		res, err := p.inner.Generate(ctx, text, taskType)
		if err != nil {
			return nil, err
		}
		if len(res.Vector()) == 0 {
			return nil, errors.New("provider returned an empty vector")
		}
		return res, nil
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.policy.Delay)),
		backoff.WithMaxTries(p.policy.MaxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Printf("[WARN] Embedding attempt %d/%d failed: %v (retrying in %s)", attempt, p.policy.MaxAttempts, err, wait)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrEmbeddingFailed, attempt, err)
	}
	return res, nil
}
