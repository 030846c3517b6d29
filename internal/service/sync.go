package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
	"github.com/storynest/gateway/internal/repository"
)

// Content domains the sync protocol serves.
const (
	DomainAssets  = "assets"
	DomainStories = "stories"
)

// MaxClientChecksums bounds the manifest a client may submit for diffing.
const MaxClientChecksums = 500

// SyncService answers version probes and computes deltas against the
// canonical manifests.
type SyncService interface {
	// Version returns the current manifest for a domain.
	Version(ctx context.Context, domain string) (*model.AssetVersion, error)
	// Diff compares a client manifest against the canonical one.
	Diff(ctx context.Context, domain string, clientChecksums map[string]string) (*model.SyncDelta, error)
}

type SyncServiceImpl struct {
	content repository.ContentRepository
}

// NewSyncService constructs SyncService.
func NewSyncService(content repository.ContentRepository) *SyncServiceImpl {
	return &SyncServiceImpl{content: content}
}

func validDomain(domain string) bool {
	return domain == DomainAssets || domain == DomainStories
}

// Version returns the current manifest for a domain.
func (s *SyncServiceImpl) Version(ctx context.Context, domain string) (*model.AssetVersion, error) {
	if !validDomain(domain) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownDomain, domain)
	}
	return s.content.GetVersion(ctx, domain)
}

// Diff returns what the client must fetch and what it must drop. Deletions
// are explicit: a client path absent from the canonical manifest lands in
// Removed, never silently ignored. The full checksum map rides along so
// the client can repair any local corruption in one pass.
func (s *SyncServiceImpl) Diff(
	ctx context.Context, domain string, clientChecksums map[string]string,
) (*model.SyncDelta, error) {
	if !validDomain(domain) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownDomain, domain)
	}
	if len(clientChecksums) > MaxClientChecksums {
		return nil, fmt.Errorf("%w: %d checksums, limit %d",
			errs.ErrBatchTooLarge, len(clientChecksums), MaxClientChecksums)
	}

	current, err := s.content.GetVersion(ctx, domain)
	if err != nil {
		return nil, err
	}

	delta := &model.SyncDelta{
		Version:     current.Version,
		Updated:     []string{},
		Removed:     []string{},
		Checksums:   current.Checksums,
		TotalAssets: current.TotalAssets,
		LastUpdated: current.LastUpdated,
	}
	for path, sum := range current.Checksums {
		if clientChecksums[path] != sum {
			delta.Updated = append(delta.Updated, path)
		}
	}
	for path := range clientChecksums {
		if _, ok := current.Checksums[path]; !ok {
			delta.Removed = append(delta.Removed, path)
		}
	}
	sort.Strings(delta.Updated)
	sort.Strings(delta.Removed)
	return delta, nil
}
