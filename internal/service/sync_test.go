package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
	"github.com/storynest/gateway/internal/repository"
)

type fakeContent struct {
	byDomain map[string]*model.AssetVersion
	err      error
}

var _ repository.ContentRepository = (*fakeContent)(nil)

func (f *fakeContent) GetVersion(_ context.Context, domain string) (*model.AssetVersion, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.byDomain[domain]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *v
	return &c, nil
}

func storiesManifest() *model.AssetVersion {
	return &model.AssetVersion{
		Domain:  DomainStories,
		Version: 7,
		Checksums: map[string]string{
			"stories/welcome.json": "aaa",
			"stories/forest.json":  "bbb",
			"stories/ocean.json":   "ccc",
		},
		TotalAssets: 3,
		LastUpdated: time.Now(),
	}
}

func TestSyncVersion(t *testing.T) {
	svc := NewSyncService(&fakeContent{byDomain: map[string]*model.AssetVersion{
		DomainStories: storiesManifest(),
	}})

	v, err := svc.Version(context.Background(), DomainStories)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v.Version != 7 || v.TotalAssets != 3 {
		t.Fatalf("manifest = %+v", v)
	}

	if _, err := svc.Version(context.Background(), "videos"); !errors.Is(err, errs.ErrUnknownDomain) {
		t.Fatalf("unknown domain: err = %v", err)
	}
}

func TestSyncDiff(t *testing.T) {
	svc := NewSyncService(&fakeContent{byDomain: map[string]*model.AssetVersion{
		DomainStories: storiesManifest(),
	}})

	// welcome is unchanged, forest is stale, retired no longer exists upstream
	client := map[string]string{
		"stories/welcome.json": "aaa",
		"stories/forest.json":  "stale",
		"stories/retired.json": "zzz",
	}
	delta, err := svc.Diff(context.Background(), DomainStories, client)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	wantUpdated := []string{"stories/forest.json", "stories/ocean.json"}
	if len(delta.Updated) != len(wantUpdated) {
		t.Fatalf("updated = %v", delta.Updated)
	}
	for i, p := range wantUpdated {
		if delta.Updated[i] != p {
			t.Fatalf("updated = %v, want %v", delta.Updated, wantUpdated)
		}
	}
	if len(delta.Removed) != 1 || delta.Removed[0] != "stories/retired.json" {
		t.Fatalf("removed = %v", delta.Removed)
	}
	if delta.Version != 7 || len(delta.Checksums) != 3 {
		t.Fatalf("delta = %+v", delta)
	}
}

func TestSyncDiff_EmptyClient(t *testing.T) {
	svc := NewSyncService(&fakeContent{byDomain: map[string]*model.AssetVersion{
		DomainStories: storiesManifest(),
	}})

	delta, err := svc.Diff(context.Background(), DomainStories, nil)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(delta.Updated) != 3 || len(delta.Removed) != 0 {
		t.Fatalf("fresh client delta = %+v", delta)
	}
}

func TestSyncDiff_InSync(t *testing.T) {
	m := storiesManifest()
	svc := NewSyncService(&fakeContent{byDomain: map[string]*model.AssetVersion{
		DomainStories: m,
	}})

	delta, err := svc.Diff(context.Background(), DomainStories, m.Checksums)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(delta.Updated) != 0 || len(delta.Removed) != 0 {
		t.Fatalf("in-sync delta = %+v", delta)
	}
}

func TestSyncDiff_ManifestTooLarge(t *testing.T) {
	svc := NewSyncService(&fakeContent{byDomain: map[string]*model.AssetVersion{
		DomainStories: storiesManifest(),
	}})

	client := make(map[string]string, MaxClientChecksums+1)
	for i := 0; i <= MaxClientChecksums; i++ {
		client[fmt.Sprintf("stories/s%d.json", i)] = "x"
	}
	_, err := svc.Diff(context.Background(), DomainStories, client)
	if !errors.Is(err, errs.ErrBatchTooLarge) {
		t.Fatalf("err = %v", err)
	}
}
