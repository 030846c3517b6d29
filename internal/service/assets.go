package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
	"github.com/storynest/gateway/internal/storage"
)

const (
	// SignedURLTTL is the lifetime of an issued asset URL.
	SignedURLTTL = 15 * time.Minute

	// MaxBatchSize bounds one batch signing request.
	MaxBatchSize = 100

	// signConcurrency bounds parallel presign calls within a batch.
	signConcurrency = 8
)

// allowedPrefixes is the whitelist of bucket namespaces clients may read.
var allowedPrefixes = []string{"stories/", "audio/", "images/", "thumbnails/"}

// AssetService validates asset paths and issues presigned URLs for them.
type AssetService interface {
	// Sign issues a time-limited URL for one asset path.
	Sign(ctx context.Context, path string) (*model.SignedURL, error)
	// SignBatch issues URLs for up to MaxBatchSize paths, preserving input
	// order. The batch is all-or-nothing: one bad path fails the request
	// before any signing starts.
	SignBatch(ctx context.Context, paths []string) ([]*model.SignedURL, error)
}

type AssetServiceImpl struct {
	signer storage.Signer
	ttl    time.Duration
	now    func() time.Time
}

// NewAssetService constructs AssetService.
func NewAssetService(signer storage.Signer) *AssetServiceImpl {
	return &AssetServiceImpl{signer: signer, ttl: SignedURLTTL, now: time.Now}
}

// ValidatePath rejects paths outside the allowed namespaces and anything
// smelling of traversal, including encoded and double-encoded NUL forms.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", errs.ErrInvalidAssetPath)
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: absolute path", errs.ErrInvalidAssetPath)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: traversal sequence", errs.ErrInvalidAssetPath)
	}
	lower := strings.ToLower(path)
	if strings.ContainsRune(path, '\x00') ||
		strings.Contains(lower, "%00") || strings.Contains(lower, "%2500") {
		return fmt.Errorf("%w: null byte", errs.ErrInvalidAssetPath)
	}
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return nil
		}
	}
	return fmt.Errorf("%w: prefix not allowed", errs.ErrInvalidAssetPath)
}

// Sign issues a URL for one path.
func (s *AssetServiceImpl) Sign(ctx context.Context, path string) (*model.SignedURL, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	expires := s.now().Add(s.ttl)
	url, err := s.signer.PresignGet(ctx, path, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrStorageUnavailable, err)
	}
	return &model.SignedURL{Path: path, URL: url, ExpiresAt: expires}, nil
}

// SignBatch signs paths concurrently. Every path is validated up front so
// no storage call happens for a partially invalid batch.
func (s *AssetServiceImpl) SignBatch(ctx context.Context, paths []string) ([]*model.SignedURL, error) {
	if len(paths) == 0 {
		return []*model.SignedURL{}, nil
	}
	if len(paths) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d paths, limit %d", errs.ErrBatchTooLarge, len(paths), MaxBatchSize)
	}
	for _, p := range paths {
		if err := ValidatePath(p); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	out := make([]*model.SignedURL, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	expires := s.now().Add(s.ttl)
	for i, p := range paths {
		g.Go(func() error {
			url, err := s.signer.PresignGet(ctx, p, s.ttl)
			if err != nil {
				return fmt.Errorf("%w: %s", errs.ErrStorageUnavailable, err)
			}
			out[i] = &model.SignedURL{Path: p, URL: url, ExpiresAt: expires}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
