package httpx

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy describes how a call site retries transient failures: up to
// MaxAttempts tries, sleeping BaseDelay, 2*BaseDelay, 4*BaseDelay, ...
// between them. The same policy object serves both the search client and the
// page fetcher, which differ only in their constants.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do runs op under the policy. op should wrap unrecoverable failures in
// backoff.Permanent so they abort immediately; everything else is retried
// until the attempt budget runs out. The context cancels waits in between.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0 // deterministic delays, matching the fixed schedule
	b.MaxInterval = 30 * time.Second
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
}

// Permanent marks err as non-retryable for RetryPolicy.Do.
func Permanent(err error) error { return backoff.Permanent(err) }
