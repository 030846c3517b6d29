// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/storynest/gateway/internal/model"
)

// UserRepository provides access to provider-keyed accounts.
type UserRepository interface {
	// GetOrCreate returns the user for (provider, providerID), creating it
	// on first sign-in. Existing users get their last_login_at bumped.
	GetOrCreate(ctx context.Context, provider, providerID string) (*model.User, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// Deactivate flips the user inactive. Rows are never deleted.
	Deactivate(ctx context.Context, id uuid.UUID) error
}
