package vfs

import (
	"context"

	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/pathutil"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// Symlink creates a symbolic link at path pointing at target. target is
// stored verbatim; it may be relative or absolute.
func (f *FS) Symlink(ctx context.Context, target, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path = pathutil.Normalize(path)
	existing, err := f.lookup(ctx, path)
	if err != nil {
		return err
	}
	if existing != nil {
		return vfserrors.New("symlink", path, vfserrors.EEXIST)
	}
	parent, err := f.requireParentDir(ctx, "symlink", path)
	if err != nil {
		return err
	}

	_, err = f.meta.CreateEntry(ctx, metadata.NewEntryFields{
		Path:       path,
		Name:       pathutil.Basename(path, ""),
		ParentID:   &parent.ID,
		Type:       metadata.TypeSymlink,
		Mode:       0o777,
		LinkTarget: &target,
	})
	if err != nil {
		return err
	}
	f.emitCreate(path, false, 0)
	return nil
}

// Link creates a hard link at newPath pointing at the same content as
// existingPath. Both entries share a blob id and its ref count is
// incremented.
func (f *FS) Link(ctx context.Context, existingPath, newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	src, err := f.requireEntry(ctx, "link", existingPath)
	if err != nil {
		return err
	}
	if src.IsDir() {
		return vfserrors.New("link", existingPath, vfserrors.EPERM)
	}

	newPath = pathutil.Normalize(newPath)
	existing, err := f.lookup(ctx, newPath)
	if err != nil {
		return err
	}
	if existing != nil {
		return vfserrors.New("link", newPath, vfserrors.EEXIST)
	}
	parent, err := f.requireParentDir(ctx, "link", newPath)
	if err != nil {
		return err
	}

	return f.meta.WithTx(ctx, func(ctx context.Context) error {
		_, err := f.meta.CreateEntry(ctx, metadata.NewEntryFields{
			Path:     newPath,
			Name:     pathutil.Basename(newPath, ""),
			ParentID: &parent.ID,
			Type:     metadata.TypeFile,
			Mode:     src.Mode,
			Size:     src.Size,
			BlobID:   src.BlobID,
		})
		if err != nil {
			return err
		}
		if src.BlobID != nil {
			if err := f.meta.IncRefBlob(ctx, *src.BlobID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Readlink returns the raw (unresolved) target of a symlink.
func (f *FS) Readlink(ctx context.Context, path string) (string, error) {
	e, err := f.requireEntry(ctx, "readlink", path)
	if err != nil {
		return "", err
	}
	if !e.IsSymlink() {
		return "", vfserrors.New("readlink", path, vfserrors.EINVAL)
	}
	if e.LinkTarget == nil {
		return "", nil
	}
	return *e.LinkTarget, nil
}

// Realpath resolves path to its canonical form, following every symlink
// in the chain. A cycle or chain longer than maxSymlinkChain fails with
// ELOOP.
func (f *FS) Realpath(ctx context.Context, path string) (string, error) {
	e, err := f.requireEntry(ctx, "realpath", path)
	if err != nil {
		return "", err
	}
	if !e.IsSymlink() {
		return e.Path, nil
	}
	target, err := f.resolveSymlink(ctx, "realpath", e)
	if err != nil {
		return "", err
	}
	if target == nil {
		return "", vfserrors.New("realpath", path, vfserrors.ENOENT)
	}
	return target.Path, nil
}
