package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/assignment-feedback/constants"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, BackoffBase: time.Millisecond, BackoffMax: 2 * time.Millisecond}
}

func TestRetryPolicy_TransientThenSuccess(t *testing.T) {
	calls := 0
	attempts, err := fastPolicy(3).Do(context.Background(), constants.CallDirect, "doc", func(context.Context) error {
		calls++
		if calls < 3 {
			return &ProviderError{Kind: Transient, Provider: "fake", StatusCode: 503, Err: errors.New("busy")}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_ExhaustsBudget(t *testing.T) {
	transient := &ProviderError{Kind: Transient, Provider: "fake", Err: errors.New("timeout")}
	attempts, err := fastPolicy(2).Do(context.Background(), constants.CallChunk, "chunk-1", func(context.Context) error {
		return transient
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, IsTransient(err))
}

func TestRetryPolicy_PermanentStopsImmediately(t *testing.T) {
	attempts, err := fastPolicy(5).Do(context.Background(), constants.CallChunk, "chunk-0", func(context.Context) error {
		return &ProviderError{Kind: Permanent, Provider: "fake", StatusCode: 401, Err: errors.New("bad key")}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_ParseErrorsByCallType(t *testing.T) {
	parseErr := &ParseError{Kind: ParseMalformed, Err: errors.New("no json")}
	policy := fastPolicy(2)

	for call, want := range map[constants.CallType]int{
		constants.CallChunk:  3,
		constants.CallMerge:  3,
		constants.CallDirect: 1,
		constants.CallNative: 1,
	} {
		attempts, err := policy.Do(context.Background(), call, "x", func(context.Context) error { return parseErr })
		require.Error(t, err)
		assert.Equal(t, want, attempts, "call %s", call)
		assert.True(t, IsParseError(err))
	}
}

func TestRetryPolicy_ZeroRetries(t *testing.T) {
	attempts, err := fastPolicy(0).Do(context.Background(), constants.CallChunk, "x", func(context.Context) error {
		return &ProviderError{Kind: Transient, Provider: "fake", Err: errors.New("busy")}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, err := fastPolicy(3).Do(ctx, constants.CallChunk, "x", func(context.Context) error {
		cancel()
		return &ProviderError{Kind: Transient, Provider: "fake", Err: errors.New("busy")}
	})
	assert.ErrorIs(t, err, context.Canceled)
}
