package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
)

// ContentRepo implements ContentRepository using PostgreSQL. Checksum maps
// are stored as JSONB and scanned straight into map[string]string.
type ContentRepo struct{ db *DB }

// NewContentRepo constructs a content version repository.
func NewContentRepo(db *DB) *ContentRepo { return &ContentRepo{db: db} }

// GetVersion loads the manifest for a content domain.
func (r *ContentRepo) GetVersion(ctx context.Context, domain string) (*model.AssetVersion, error) {
	const q = `
SELECT domain, version, checksums, total_assets, last_updated
FROM content_versions WHERE domain=$1`
	row := r.db.Pool.QueryRow(ctx, q, domain)
	var v model.AssetVersion
	if err := row.Scan(&v.Domain, &v.Version, &v.Checksums, &v.TotalAssets, &v.LastUpdated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if v.Checksums == nil {
		v.Checksums = map[string]string{}
	}
	return &v, nil
}
