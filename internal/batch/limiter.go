package batch

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"journal-classifier/internal/common/metrics"
)

// Limiter caps the number of calls in flight. Waiters are served in FIFO order.
type Limiter struct {
	sem      *semaphore.Weighted
	size     int
	inFlight atomic.Int64
	peak     atomic.Int64
}

func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(n)), size: n}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	cur := l.inFlight.Add(1)
	for {
		p := l.peak.Load()
		if cur <= p || l.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	metrics.ClassifierCallsInFlight.Inc()
	return nil
}

func (l *Limiter) Release() {
	l.inFlight.Add(-1)
	metrics.ClassifierCallsInFlight.Dec()
	l.sem.Release(1)
}

// Do runs fn while holding a slot. The slot is released even if fn panics.
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}

func (l *Limiter) Size() int { return l.size }

// InFlight is the number of slots currently held.
func (l *Limiter) InFlight() int { return int(l.inFlight.Load()) }

// Peak is the highest InFlight observed.
func (l *Limiter) Peak() int { return int(l.peak.Load()) }
