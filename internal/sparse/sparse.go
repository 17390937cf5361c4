// Package sparse implements a read-filtering overlay over a pkg/vfs
// filesystem: paths excluded by a pattern checker behave as if they don't
// exist. The underlying filesystem is never mutated by this package.
package sparse

import (
	"context"

	"github.com/durablefs/vfs/internal/handle"
	"github.com/durablefs/vfs/pkg/pathutil"
	"github.com/durablefs/vfs/pkg/pattern"
	"github.com/durablefs/vfs/pkg/vfs"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// FS wraps an underlying vfs.FileSystem, hiding any path the checker
// excludes. Root is the prefix underlying paths are made relative to
// before checking (usually "/"); every operation converts its path to a
// root-relative form for pattern evaluation but passes the original,
// unmodified path through to the underlying filesystem.
type FS struct {
	under   vfs.FileSystem
	checker *pattern.Checker
	root    string
}

// New builds a sparse view over under, filtered by checker. root is the
// path prefix relative paths are computed against.
func New(under vfs.FileSystem, checker *pattern.Checker, root string) *FS {
	if root == "" {
		root = "/"
	}
	return &FS{under: under, checker: checker, root: root}
}

func (f *FS) relative(path string) string {
	rel := pathutil.Relative(f.root, path)
	if rel == "" {
		return "."
	}
	return rel
}

// included reports whether path (in original form) is visible through
// this view.
func (f *FS) included(path string) bool {
	return f.checker.ShouldInclude(f.relative(path))
}

func notFound(op, path string) error {
	return vfserrors.New(op, path, vfserrors.ENOENT)
}

// Stat returns path's attributes, or ENOENT if it's excluded.
func (f *FS) Stat(ctx context.Context, path string) (vfs.FileInfo, error) {
	if !f.included(path) {
		return vfs.FileInfo{}, notFound("stat", path)
	}
	return f.under.Stat(ctx, path)
}

// Lstat returns path's attributes without following a trailing symlink,
// or ENOENT if it's excluded.
func (f *FS) Lstat(ctx context.Context, path string) (vfs.FileInfo, error) {
	if !f.included(path) {
		return vfs.FileInfo{}, notFound("lstat", path)
	}
	return f.under.Lstat(ctx, path)
}

// Exists reports whether path both exists in the underlying filesystem
// and is visible through this view.
func (f *FS) Exists(ctx context.Context, path string) (bool, error) {
	if !f.included(path) {
		return false, nil
	}
	return f.under.Exists(ctx, path)
}

// Access checks path's permission bits, or fails with ENOENT if excluded.
func (f *FS) Access(ctx context.Context, path string, mode uint32) error {
	if !f.included(path) {
		return notFound("access", path)
	}
	return f.under.Access(ctx, path, mode)
}

// Chmod updates path's mode bits, or fails with ENOENT if excluded.
func (f *FS) Chmod(ctx context.Context, path string, mode uint32) error {
	if !f.included(path) {
		return notFound("chmod", path)
	}
	return f.under.Chmod(ctx, path, mode)
}

// Chown updates path's owning uid/gid, or fails with ENOENT if excluded.
func (f *FS) Chown(ctx context.Context, path string, uid, gid uint32) error {
	if !f.included(path) {
		return notFound("chown", path)
	}
	return f.under.Chown(ctx, path, uid, gid)
}

// Utimes updates path's atime/mtime, or fails with ENOENT if excluded.
func (f *FS) Utimes(ctx context.Context, path string, opts vfs.UtimesOptions) error {
	if !f.included(path) {
		return notFound("utimes", path)
	}
	return f.under.Utimes(ctx, path, opts)
}

// Read returns path's content, or ENOENT if excluded.
func (f *FS) Read(ctx context.Context, path string, opts vfs.ReadOptions) ([]byte, error) {
	if !f.included(path) {
		return nil, notFound("read", path)
	}
	return f.under.Read(ctx, path, opts)
}

// Open opens path for I/O, or fails with ENOENT if excluded. Excluding a
// path also excludes creating a new entry there.
func (f *FS) Open(ctx context.Context, path string, flag handle.Flag, mode uint32) (int, error) {
	if !f.included(path) {
		return 0, notFound("open", path)
	}
	return f.under.Open(ctx, path, flag, mode)
}

// Readlink returns path's raw link target, or ENOENT if excluded.
func (f *FS) Readlink(ctx context.Context, path string) (string, error) {
	if !f.included(path) {
		return "", notFound("readlink", path)
	}
	return f.under.Readlink(ctx, path)
}

// Realpath resolves path's canonical form, or ENOENT if excluded.
func (f *FS) Realpath(ctx context.Context, path string) (string, error) {
	if !f.included(path) {
		return "", notFound("realpath", path)
	}
	return f.under.Realpath(ctx, path)
}

// Underlying returns the wrapped filesystem, for operations this view
// intentionally does not filter (mutation and fd-level I/O pass straight
// through once an Open call has already confirmed visibility).
func (f *FS) Underlying() vfs.FileSystem { return f.under }

// Checker returns the pattern checker backing this view.
func (f *FS) Checker() *pattern.Checker { return f.checker }
