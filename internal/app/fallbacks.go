package app

import (
	"context"
	"sync"

	"stayscout/internal/adapters/observability"
	"stayscout/internal/domain"
)

// MetricsRecorder counts fallbacks by error kind.
type MetricsRecorder struct{}

func (MetricsRecorder) RecordFallback(_ context.Context, ev domain.FallbackEvent) error {
	observability.ObserveFallback(string(ev.Kind))
	return nil
}

// FallbackTrail keeps the most recent fallback events in memory.
type FallbackTrail struct {
	mu   sync.Mutex
	buf  []domain.FallbackEvent
	next int
	full bool
}

func NewFallbackTrail(size int) *FallbackTrail {
	if size <= 0 {
		size = 50
	}
	return &FallbackTrail{buf: make([]domain.FallbackEvent, size)}
}

func (t *FallbackTrail) RecordFallback(_ context.Context, ev domain.FallbackEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.next] = ev
	t.next = (t.next + 1) % len(t.buf)
	if t.next == 0 {
		t.full = true
	}
	return nil
}

// RecentFallbacks returns up to limit events, newest first.
func (t *FallbackTrail) RecentFallbacks(_ context.Context, limit int) ([]domain.FallbackEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.next
	if t.full {
		n = len(t.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.FallbackEvent, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, t.buf[(t.next-i+len(t.buf))%len(t.buf)])
	}
	return out, nil
}
