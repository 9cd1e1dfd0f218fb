package wikidata

import (
	"context"
	"sync"
	"time"
)

// pacer enforces a minimum interval between external calls. Unlike a plain
// sleep, Wait honors context cancellation, so a user abort is observed
// between calls rather than after the remaining delay.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func newPacer(interval time.Duration) *pacer {
	return &pacer{interval: interval}
}

// Wait blocks until the caller's reserved slot arrives or ctx is done.
// Concurrent callers are each assigned the next free slot, so the minimum
// interval holds across goroutines.
func (p *pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	p.mu.Lock()
	now := time.Now()
	slot := p.next
	if slot.Before(now) {
		slot = now
	}
	p.next = slot.Add(p.interval)
	p.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
