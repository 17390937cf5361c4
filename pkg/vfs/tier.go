package vfs

import (
	"context"

	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// GetTier returns the storage tier backing path's content. Directories
// and symlinks have no content tier and return an empty Tier.
func (f *FS) GetTier(ctx context.Context, path string) (metadata.Tier, error) {
	e, err := f.requireEntry(ctx, "getTier", path)
	if err != nil {
		return "", err
	}
	if e.IsDir() || e.IsSymlink() {
		return "", nil
	}
	return e.Tier, nil
}

// Promote migrates path's content to the hot tier.
func (f *FS) Promote(ctx context.Context, path string) error {
	return f.migrateTier(ctx, path, metadata.TierHot)
}

// Demote migrates path's content to the given colder tier (warm or cold).
func (f *FS) Demote(ctx context.Context, path string, target metadata.Tier) error {
	return f.migrateTier(ctx, path, target)
}

func (f *FS) migrateTier(ctx context.Context, path string, target metadata.Tier) error {
	e, err := f.requireEntry(ctx, "migrateTier", path)
	if err != nil {
		return err
	}
	if e.BlobID == nil {
		return vfserrors.New("migrateTier", path, vfserrors.EINVAL)
	}
	if err := f.blobs.Migrate(ctx, *e.BlobID, target); err != nil {
		return err
	}
	return f.meta.UpdateEntry(ctx, e.ID, metadata.EntryUpdate{Tier: &target})
}
