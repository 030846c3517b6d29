package repository

import (
	"context"

	"github.com/storynest/gateway/internal/model"
)

// ContentRepository reads the canonical version manifests that the sync
// protocol diffs against. The gateway never writes them; the publishing
// pipeline owns that side.
type ContentRepository interface {
	// GetVersion loads the manifest for a content domain.
	GetVersion(ctx context.Context, domain string) (*model.AssetVersion, error)
}
