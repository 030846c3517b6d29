package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/storynest/gateway/internal/model"
)

// SessionRepository persists refresh sessions. Tokens are identified only
// by their hash; the repository never sees a raw token.
type SessionRepository interface {
	// Create inserts a new session.
	Create(ctx context.Context, s *model.Session) error
	// FindByTokenHash matches hash against the current or the rotated-out
	// hash of a session. Callers distinguish the two via the returned row.
	FindByTokenHash(ctx context.Context, hash string) (*model.Session, error)
	// FindActiveByUser lists the user's active sessions, oldest first.
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*model.Session, error)
	// CountActive counts the user's active sessions.
	CountActive(ctx context.Context, userID uuid.UUID) (int, error)
	// FindExpiringWithin lists active sessions whose expiry falls inside
	// the window starting now.
	FindExpiringWithin(ctx context.Context, now time.Time, window time.Duration) ([]*model.Session, error)
	// Rotate atomically swaps the refresh hash of an active session. It
	// succeeds only if oldHash is still the current hash; a lost race
	// returns errs.ErrConflict and leaves the winner untouched.
	Rotate(ctx context.Context, id uuid.UUID, oldHash, newHash string, lastAccessed, expires time.Time) error
	// MarkInactive deactivates one session.
	MarkInactive(ctx context.Context, id uuid.UUID) error
	// MarkInactiveByUser deactivates all of a user's sessions and returns
	// how many were affected.
	MarkInactiveByUser(ctx context.Context, userID uuid.UUID) (int, error)
	// Touch updates last_accessed_at.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	// DeactivateExpired flips active=false on sessions past their expiry
	// and returns how many were swept.
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}
