package limiter

import (
	"context"
	"sync"
	"time"
)

// Window is an in-memory fixed-window request limiter. Counters reset at
// the top of each minute, which is good enough for abuse protection; the
// trade-off is a brief burst allowance across a window boundary.
type Window struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	counts  map[string]int
	started time.Time
}

// NewWindow constructs a limiter allowing limit requests per minute per key.
func NewWindow(limit int) *Window {
	return &Window{limit: limit, now: time.Now, counts: make(map[string]int)}
}

// Limit returns the per-window budget.
func (w *Window) Limit() int { return w.limit }

// Take consumes one unit for key.
func (w *Window) Take(_ context.Context, key string) (bool, int, time.Duration, error) {
	now := w.now()
	windowStart := now.Truncate(time.Minute)
	reset := windowStart.Add(time.Minute).Sub(now)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started.Equal(windowStart) {
		w.counts = make(map[string]int)
		w.started = windowStart
	}

	if w.counts[key] >= w.limit {
		return false, 0, reset, nil
	}
	w.counts[key]++
	return true, w.limit - w.counts[key], reset, nil
}
