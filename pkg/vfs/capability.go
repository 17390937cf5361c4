package vfs

import (
	"context"

	"github.com/durablefs/vfs/internal/handle"
	"github.com/durablefs/vfs/internal/metadata"
)

// FileSystem is the base set of operations every FS instance supports.
// Callers that only need core POSIX-like semantics should depend on this
// interface rather than the concrete *FS type.
type FileSystem interface {
	Stat(ctx context.Context, path string) (FileInfo, error)
	Lstat(ctx context.Context, path string) (FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
	Access(ctx context.Context, path string, mode uint32) error
	Chmod(ctx context.Context, path string, mode uint32) error
	Chown(ctx context.Context, path string, uid, gid uint32) error
	Utimes(ctx context.Context, path string, opts UtimesOptions) error

	Mkdir(ctx context.Context, path string, opts MkdirOptions) error
	Rmdir(ctx context.Context, path string, opts RmOptions) error
	Rm(ctx context.Context, path string, opts RmOptions) error
	Readdir(ctx context.Context, path string, opts ReaddirOptions) (ReaddirResult, error)
	List(ctx context.Context, path string) ([]string, error)

	Open(ctx context.Context, path string, flag handle.Flag, mode uint32) (int, error)
	ReadFD(ctx context.Context, fd int, buffer []byte, offset, length int, position *int64) (int, error)
	WriteFD(ctx context.Context, fd int, data []byte, position *int64) (int, error)
	SyncFD(ctx context.Context, fd int) error
	CloseFD(ctx context.Context, fd int) error

	Read(ctx context.Context, path string, opts ReadOptions) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, opts WriteOptions) error
	Append(ctx context.Context, path string, data []byte) error
	Truncate(ctx context.Context, path string, length int64) error
	Unlink(ctx context.Context, path string) error

	Symlink(ctx context.Context, target, path string) error
	Link(ctx context.Context, existingPath, newPath string) error
	Readlink(ctx context.Context, path string) (string, error)
	Realpath(ctx context.Context, path string) (string, error)

	Rename(ctx context.Context, oldPath, newPath string) error
	CopyFile(ctx context.Context, src, dst string, opts CopyOptions) error
}

// TieredFileSystem is implemented by filesystems whose content can be
// migrated between storage tiers. Not every backing store supports tier
// migration (a pure in-memory store has nothing to demote to), so callers
// type-assert for this capability once at construction rather than
// failing at call time.
type TieredFileSystem interface {
	FileSystem
	GetTier(ctx context.Context, path string) (metadata.Tier, error)
	Promote(ctx context.Context, path string) error
	Demote(ctx context.Context, path string, target metadata.Tier) error
}

var (
	_ FileSystem       = (*FS)(nil)
	_ TieredFileSystem = (*FS)(nil)
)
