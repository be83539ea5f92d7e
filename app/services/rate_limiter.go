package services

import (
	"context"
	"sync"
	"time"
)

// RateLimiter gates calls to the AI backends. Wait blocks until a slot
// frees inside the sliding window; it only fails when ctx is done.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// SlidingWindowLimiter allows at most quota calls per window, shared
// across all callers. Over-quota calls block instead of being rejected;
// the wait is bounded by the window size because the oldest timestamp
// ages out within one window. Clock and sleeper are injectable for tests.
type SlidingWindowLimiter struct {
	window time.Duration
	quota  int
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	calls []time.Time
}

// NewSlidingWindowLimiter creates a limiter with the given window and quota
func NewSlidingWindowLimiter(window time.Duration, quota int, now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *SlidingWindowLimiter {
	if now == nil {
		now = time.Now
	}
	if sleep == nil {
		sleep = sleepWithContext
	}
	return &SlidingWindowLimiter{
		window: window,
		quota:  quota,
		now:    now,
		sleep:  sleep,
		calls:  make([]time.Time, 0, quota),
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the call is admitted into the window
func (l *SlidingWindowLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.calls) < l.quota {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}
		// Oldest call leaves the window at calls[0] + window.
		wait := l.calls[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// prune drops timestamps that fell out of the window. Caller holds mu.
func (l *SlidingWindowLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls = kept
}
