// Package pacing throttles workspace iteration frequency for real-time
// style runs. A zero rate means unpaced: iterations run as fast as the
// components allow.
package pacing

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter paces iterations at a configurable number of iterations per
// second. The rate can be changed while a run is in flight.
type Limiter struct {
	mu      sync.RWMutex
	limiter *rate.Limiter
}

func NewLimiter(iterationsPerSecond float64) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(iterationsPerSecond), 1),
	}
}

// Wait blocks until the next iteration may begin, or until ctx is
// cancelled. An unpaced limiter returns immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.RLock()
	limiter := l.limiter
	limit := limiter.Limit()
	l.mu.RUnlock()

	if limit == 0 {
		return nil
	}
	return limiter.Wait(ctx)
}

// SetRate adjusts the pace. Zero disables pacing.
func (l *Limiter) SetRate(iterationsPerSecond float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter.SetLimit(rate.Limit(iterationsPerSecond))
}

// Rate reports the current pace in iterations per second.
func (l *Limiter) Rate() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return float64(l.limiter.Limit())
}
