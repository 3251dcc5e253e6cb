// Package concurrency runs optimistic read-modify-write cycles against
// versioned repositories with a bounded number of attempts.
package concurrency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// Policy bounds the retries of a conflicting write
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy returns the policy used when none is configured
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   5 * time.Millisecond,
		MaxDelay:    100 * time.Millisecond,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = max(d.MaxDelay, p.BaseDelay)
	}
	return p
}

// Retry runs fn until it succeeds, fails with a non-conflict error, or the
// policy runs out of attempts. fn must re-read the aggregate it writes on
// every call. Exhaustion returns shared.ErrTransientConflict.
func Retry[T any](ctx context.Context, policy Policy, logger *zap.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.normalized()
	if logger == nil {
		logger = zap.NewNop()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = policy.BaseDelay
	eb.MaxInterval = policy.MaxDelay
	eb.RandomizationFactor = 0.5
	eb.Multiplier = 2

	attempt := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return v, err
		}
		return v, backoff.Permanent(err)
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("optimistic write conflicted, retrying",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", next),
			)
		}),
	)
	if err != nil && errors.Is(err, shared.ErrConcurrencyConflict) {
		logger.Warn("optimistic write retries exhausted",
			zap.String("operation", op),
			zap.Int("attempts", attempt),
		)
		var zero T
		return zero, fmt.Errorf("%s: %w", op, shared.ErrTransientConflict)
	}
	return result, err
}
