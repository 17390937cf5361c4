package vfs

import (
	"context"

	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/pathutil"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

const (
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
	maxSymlinkChain = 40
)

// lookup returns the entry at path or nil if it doesn't exist.
func (f *FS) lookup(ctx context.Context, path string) (*metadata.Entry, error) {
	return f.meta.GetByPath(ctx, pathutil.Normalize(path))
}

// requireEntry is lookup plus an ENOENT error when the entry is absent.
func (f *FS) requireEntry(ctx context.Context, op, path string) (*metadata.Entry, error) {
	e, err := f.lookup(ctx, path)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, vfserrors.New(op, path, vfserrors.ENOENT)
	}
	return e, nil
}

// requireParentDir resolves the parent directory of path, failing with
// ENOENT if it's absent and ENOTDIR if it exists but isn't a directory.
func (f *FS) requireParentDir(ctx context.Context, op, path string) (*metadata.Entry, error) {
	parentPath := pathutil.Dirname(pathutil.Normalize(path))
	parent, err := f.requireEntry(ctx, op, parentPath)
	if err != nil {
		return nil, err
	}
	if !parent.IsDir() {
		return nil, vfserrors.New(op, path, vfserrors.ENOTDIR)
	}
	return parent, nil
}

// resolveSymlink follows a chain of symlinks starting at entry, up to
// maxSymlinkChain hops, returning the final non-symlink entry (or nil if
// the chain ends at a nonexistent target).
func (f *FS) resolveSymlink(ctx context.Context, op string, entry *metadata.Entry) (*metadata.Entry, error) {
	seen := make(map[string]bool)
	current := entry
	for hops := 0; current != nil && current.IsSymlink(); hops++ {
		if hops >= maxSymlinkChain || seen[current.Path] {
			return nil, vfserrors.New(op, entry.Path, vfserrors.ELOOP)
		}
		seen[current.Path] = true

		target := ""
		if current.LinkTarget != nil {
			target = *current.LinkTarget
		}
		targetPath := target
		if !pathutil.IsAbsolute(target) {
			targetPath = pathutil.Join(pathutil.Dirname(current.Path), target)
		}

		next, err := f.lookup(ctx, targetPath)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
