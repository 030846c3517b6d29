package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// GetOrCreate upserts the (provider, provider_id) account in one statement
// so concurrent first sign-ins cannot create duplicates.
func (r *UserRepo) GetOrCreate(ctx context.Context, provider, providerID string) (*model.User, error) {
	const q = `
INSERT INTO users (id, provider, provider_id, active, created_at, updated_at, last_login_at)
VALUES ($1, $2, $3, true, now(), now(), now())
ON CONFLICT (provider, provider_id)
DO UPDATE SET last_login_at = now(), updated_at = now()
RETURNING id, provider, provider_id, active, created_at, updated_at, last_login_at`
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	row := r.db.Pool.QueryRow(ctx, q, id, provider, providerID)
	var u model.User
	if err := row.Scan(&u.ID, &u.Provider, &u.ProviderID, &u.Active,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt); err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, errs.ErrUnauthorized
	}
	return &u, nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, provider, provider_id, active, created_at, updated_at, last_login_at
FROM users WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var u model.User
	if err := row.Scan(&u.ID, &u.Provider, &u.ProviderID, &u.Active,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Deactivate flips the user inactive.
func (r *UserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET active=false, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
