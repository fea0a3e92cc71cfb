package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastPolicy(attempts int) Policy {
	return Policy{
		Name:        "test",
		MaxAttempts: attempts,
		MinWait:     time.Millisecond,
		MaxWait:     2 * time.Millisecond,
	}
}

func TestRun_SucceedsFirstTime(t *testing.T) {
	calls := 0
	attempts, err := fastPolicy(3).Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestRun_RecoversAfterTransientFailures(t *testing.T) {
	calls := 0
	attempts, err := fastPolicy(5).Run(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRun_ExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	attempts, err := fastPolicy(5).Run(context.Background(), func(context.Context) error {
		return errTransient
	})

	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 5, attempts)
}

func TestRun_NonRetryableStopsImmediately(t *testing.T) {
	errAuth := errors.New("password authentication failed")
	p := fastPolicy(5)
	p.Retryable = func(err error) bool { return !errors.Is(err, errAuth) }

	attempts, err := p.Run(context.Background(), func(context.Context) error {
		return errAuth
	})

	require.ErrorIs(t, err, errAuth)
	assert.Equal(t, 1, attempts)
}

func TestRun_ZeroAttemptsStillCallsOnce(t *testing.T) {
	attempts, err := fastPolicy(0).Run(context.Background(), func(context.Context) error {
		return errTransient
	})

	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, attempts)
}

func TestRun_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Name: "slow", MaxAttempts: 5, MinWait: time.Hour, MaxWait: time.Hour}

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(ctx, func(context.Context) error { return errTransient })
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestBackoff_StaysWithinBounds(t *testing.T) {
	p := Policy{MaxAttempts: 5, MinWait: 4 * time.Second, MaxWait: 10 * time.Second}
	b := p.backoff()

	var waits []time.Duration
	for {
		next, stop := b.Next()
		if stop {
			break
		}
		waits = append(waits, next)
	}

	assert.Equal(t, []time.Duration{4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}, waits)
}
