package survey

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Gate paces query dispatch to respect provider rate limits. Every dispatch
// waits on the gate first, so swapping the implementation never touches
// extraction or aggregation logic.
type Gate interface {
	Wait(ctx context.Context) error
}

type tokenBucketGate struct {
	limiter *rate.Limiter
}

// NewTokenBucketGate returns a Gate that releases one dispatch per delay,
// with a burst of one.
func NewTokenBucketGate(delay time.Duration) Gate {
	if delay <= 0 {
		return nopGate{}
	}
	return &tokenBucketGate{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

func (g *tokenBucketGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

type fixedDelayGate struct {
	delay time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewFixedDelayGate returns a Gate that sleeps a fixed delay between
// consecutive dispatches. This is the baseline sequential pacing; the token
// bucket gate behaves the same under one worker but also holds under many.
func NewFixedDelayGate(delay time.Duration) Gate {
	if delay <= 0 {
		return nopGate{}
	}
	return &fixedDelayGate{delay: delay}
}

func (g *fixedDelayGate) Wait(ctx context.Context) error {
	g.mu.Lock()
	wait := time.Until(g.last.Add(g.delay))
	if wait < 0 {
		wait = 0
	}
	g.last = time.Now().Add(wait)
	g.mu.Unlock()

	if wait == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopGate struct{}

func (nopGate) Wait(ctx context.Context) error {
	return ctx.Err()
}
