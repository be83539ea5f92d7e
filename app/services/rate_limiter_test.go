package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiterUnderQuota(t *testing.T) {
	clock := newFakeClock()
	slept := []time.Duration{}
	limiter := NewSlidingWindowLimiter(time.Minute, 3, clock.Now, func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock.Advance(d)
		return nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}

	// Quota not exhausted, no call slept
	assert.Empty(t, slept)
}

func TestSlidingWindowLimiterBlocksOverQuota(t *testing.T) {
	clock := newFakeClock()
	slept := []time.Duration{}
	limiter := NewSlidingWindowLimiter(time.Minute, 2, clock.Now, func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock.Advance(d)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx))
	clock.Advance(10 * time.Second)
	require.NoError(t, limiter.Wait(ctx))

	// Third call must wait until the first timestamp leaves the window,
	// 50 seconds from now, never longer than the window itself.
	require.NoError(t, limiter.Wait(ctx))
	require.Len(t, slept, 1)
	assert.Equal(t, 50*time.Second, slept[0])
	assert.LessOrEqual(t, slept[0], time.Minute)
}

func TestSlidingWindowLimiterQuotaFreesAfterWindow(t *testing.T) {
	clock := newFakeClock()
	limiter := NewSlidingWindowLimiter(time.Minute, 1, clock.Now, func(ctx context.Context, d time.Duration) error {
		clock.Advance(d)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx))

	// A full window later the slot is free again without sleeping
	clock.Advance(time.Minute + time.Second)
	start := clock.Now()
	require.NoError(t, limiter.Wait(ctx))
	assert.Equal(t, start, clock.Now())
}

func TestSlidingWindowLimiterContextCancellation(t *testing.T) {
	clock := newFakeClock()
	limiter := NewSlidingWindowLimiter(time.Minute, 1, clock.Now, func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, limiter.Wait(ctx))

	cancel()
	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSlidingWindowLimiterSharedAcrossGoroutines(t *testing.T) {
	limiter := NewSlidingWindowLimiter(time.Minute, 20, nil, nil)
	ctx := context.Background()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			done <- limiter.Wait(ctx)
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.calls, 10)
}
