package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/joseph-ayodele/assignment-feedback/constants"
)

const retryJitter = 50 * time.Millisecond

// RetryPolicy decides how often and how patiently a provider call is repeated.
// MaxRetries counts repeats after the first attempt.
type RetryPolicy struct {
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Jitter      bool
	Logger      *slog.Logger
}

// Retryable reports whether err may consume another attempt for the given call type.
// Transient provider errors always qualify. Parse failures qualify for chunk and merge calls;
// direct and native calls fail on the first unusable reply.
func (p RetryPolicy) Retryable(call constants.CallType, err error) bool {
	if IsTransient(err) {
		return true
	}
	if IsParseError(err) {
		return call == constants.CallChunk || call == constants.CallMerge
	}
	return false
}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.BackoffBase
	if base <= 0 {
		base = time.Millisecond
	}
	b := retry.NewExponential(base)
	if p.BackoffMax > 0 {
		b = retry.WithCappedDuration(p.BackoffMax, b)
	}
	if p.Jitter {
		b = retry.WithJitter(min(retryJitter, base), b)
	}
	retries := 0
	if p.MaxRetries > 0 {
		retries = p.MaxRetries
	}
	return retry.WithMaxRetries(uint64(retries), b) // #nosec G115 -- non-negative above
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the budget is spent.
// It returns the number of attempts made and the last error.
func (p RetryPolicy) Do(ctx context.Context, call constants.CallType, label string, fn func(ctx context.Context) error) (int, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := 0
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempts++
		callErr := fn(ctx)
		if callErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.Retryable(call, callErr) {
			logger.Warn("llm.retry.attempt_failed",
				"call", call,
				"label", label,
				"attempt", attempts,
				"max_retries", p.MaxRetries,
				"error", callErr,
			)
			return retry.RetryableError(callErr)
		}
		return callErr
	})
	return attempts, err
}
