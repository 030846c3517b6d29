package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
)

// SessionRepo implements SessionRepository using PostgreSQL.
type SessionRepo struct{ db *DB }

// NewSessionRepo constructs a session repository.
func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionColumns = `
id, user_id, refresh_hash, previous_hash, device_id, device_type,
platform, app_version, active, created_at, last_accessed_at, expires_at`

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.RefreshHash, &s.PreviousHash,
		&s.DeviceID, &s.DeviceType, &s.Platform, &s.AppVersion,
		&s.Active, &s.CreatedAt, &s.LastAccessedAt, &s.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `
INSERT INTO sessions (id, user_id, refresh_hash, previous_hash, device_id, device_type,
                      platform, app_version, active, created_at, last_accessed_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Pool.Exec(ctx, q, s.ID, s.UserID, s.RefreshHash, s.PreviousHash,
		s.DeviceID, s.DeviceType, s.Platform, s.AppVersion,
		s.Active, s.CreatedAt, s.LastAccessedAt, s.ExpiresAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// FindByTokenHash matches hash against the current or previous refresh
// hash. Both columns are indexed, so lookup stays O(1) in session count.
func (r *SessionRepo) FindByTokenHash(ctx context.Context, hash string) (*model.Session, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM sessions WHERE refresh_hash=$1 OR previous_hash=$1`
	s, err := scanSession(r.db.Pool.QueryRow(ctx, q, hash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return s, err
}

// FindActiveByUser lists active sessions oldest first, so callers can
// evict from the front when the per-user cap is hit.
func (r *SessionRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*model.Session, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM sessions WHERE user_id=$1 AND active ORDER BY created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindExpiringWithin lists active sessions expiring inside the window.
func (r *SessionRepo) FindExpiringWithin(
	ctx context.Context, now time.Time, window time.Duration,
) ([]*model.Session, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE active AND expires_at > $1 AND expires_at <= $2
ORDER BY expires_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountActive counts the user's active sessions.
func (r *SessionRepo) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM sessions WHERE user_id=$1 AND active`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Rotate swaps the refresh hash in a single guarded UPDATE. The oldHash
// predicate makes the rotation atomic: of two concurrent refreshes with
// the same token, exactly one row matches and the other gets ErrConflict.
func (r *SessionRepo) Rotate(
	ctx context.Context, id uuid.UUID, oldHash, newHash string, lastAccessed, expires time.Time,
) error {
	const q = `
UPDATE sessions
SET refresh_hash=$3, previous_hash=$2, last_accessed_at=$4, expires_at=$5
WHERE id=$1 AND refresh_hash=$2 AND active`
	tag, err := r.db.Pool.Exec(ctx, q, id, oldHash, newHash, lastAccessed, expires)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrConflict
	}
	return nil
}

// MarkInactive deactivates one session.
func (r *SessionRepo) MarkInactive(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE sessions SET active=false WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// MarkInactiveByUser deactivates all of a user's sessions.
func (r *SessionRepo) MarkInactiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const q = `UPDATE sessions SET active=false WHERE user_id=$1 AND active`
	tag, err := r.db.Pool.Exec(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Touch updates last_accessed_at.
func (r *SessionRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `UPDATE sessions SET last_accessed_at=$2 WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id, at)
	return err
}

// DeactivateExpired sweeps sessions past their expiry. Validity checks do
// not depend on the sweep; it only keeps the table tidy.
func (r *SessionRepo) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	const q = `UPDATE sessions SET active=false WHERE active AND expires_at <= $1`
	tag, err := r.db.Pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
