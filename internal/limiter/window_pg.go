package limiter

import (
	"context"
	"time"
)

// PGWindow is a PostgreSQL-backed fixed-window request limiter. Unlike
// Window, the budget is shared across gateway instances.
type PGWindow struct {
	pool  pgxQuerier
	limit int
	now   func() time.Time
}

// NewPGWindow constructs a shared limiter allowing limit requests per
// minute per key.
func NewPGWindow(q pgxQuerier, limit int) *PGWindow {
	return &PGWindow{pool: q, limit: limit, now: time.Now}
}

// Limit returns the per-window budget.
func (l *PGWindow) Limit() int { return l.limit }

// Take consumes one unit for key. The upsert resets the counter when the
// stored window differs from the current one, so stale rows self-heal.
func (l *PGWindow) Take(ctx context.Context, key string) (bool, int, time.Duration, error) {
	now := l.now()
	windowStart := now.Truncate(time.Minute)
	reset := windowStart.Add(time.Minute).Sub(now)

	const q = `
INSERT INTO request_counters (key_id, window_start, hits)
VALUES ($1, $2, 1)
ON CONFLICT (key_id) DO UPDATE
SET
  hits = CASE WHEN request_counters.window_start = EXCLUDED.window_start THEN request_counters.hits + 1 ELSE 1 END,
  window_start = EXCLUDED.window_start
RETURNING hits`
	var hits int
	if err := l.pool.QueryRow(ctx, q, key, windowStart).Scan(&hits); err != nil {
		return false, 0, 0, err
	}
	if hits > l.limit {
		return false, 0, reset, nil
	}
	return true, l.limit - hits, reset, nil
}
