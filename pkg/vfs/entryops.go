package vfs

import (
	"context"

	"github.com/durablefs/vfs/internal/blob"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/pathutil"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// Stat returns the attributes of the entry at path, resolving a trailing
// symlink.
func (f *FS) Stat(ctx context.Context, path string) (FileInfo, error) {
	e, err := f.requireEntry(ctx, "stat", path)
	if err != nil {
		return FileInfo{}, err
	}
	if e.IsSymlink() {
		target, err := f.resolveSymlink(ctx, "stat", e)
		if err != nil {
			return FileInfo{}, err
		}
		if target == nil {
			return FileInfo{}, vfserrors.New("stat", path, vfserrors.ENOENT)
		}
		e = target
	}
	return infoFromEntry(e), nil
}

// Lstat returns the attributes of the entry at path without following a
// trailing symlink.
func (f *FS) Lstat(ctx context.Context, path string) (FileInfo, error) {
	e, err := f.requireEntry(ctx, "lstat", path)
	if err != nil {
		return FileInfo{}, err
	}
	return infoFromEntry(e), nil
}

// Exists reports whether path resolves to an entry.
func (f *FS) Exists(ctx context.Context, path string) (bool, error) {
	e, err := f.lookup(ctx, path)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

// Access checks that path exists and, when mode is nonzero, that its
// permission bits satisfy the requested rwx mask.
func (f *FS) Access(ctx context.Context, path string, mode uint32) error {
	e, err := f.requireEntry(ctx, "access", path)
	if err != nil {
		return err
	}
	if mode != 0 && e.Mode&mode != mode {
		return vfserrors.New("access", path, vfserrors.EACCES)
	}
	return nil
}

// Chmod updates an entry's mode bits.
func (f *FS) Chmod(ctx context.Context, path string, mode uint32) error {
	e, err := f.requireEntry(ctx, "chmod", path)
	if err != nil {
		return err
	}
	return f.meta.UpdateEntry(ctx, e.ID, metadata.EntryUpdate{Mode: &mode})
}

// Chown updates an entry's owning uid/gid.
func (f *FS) Chown(ctx context.Context, path string, uid, gid uint32) error {
	e, err := f.requireEntry(ctx, "chown", path)
	if err != nil {
		return err
	}
	return f.meta.UpdateEntry(ctx, e.ID, metadata.EntryUpdate{UID: &uid, GID: &gid})
}

// Utimes updates an entry's atime/mtime.
func (f *FS) Utimes(ctx context.Context, path string, opts UtimesOptions) error {
	e, err := f.requireEntry(ctx, "utimes", path)
	if err != nil {
		return err
	}
	return f.meta.UpdateEntry(ctx, e.ID, metadata.EntryUpdate{ATime: &opts.ATime, MTime: &opts.MTime})
}

// Mkdir creates a directory at path. With opts.Recursive, missing parents
// are created; without it, a missing parent fails with ENOENT and an
// existing path fails with EEXIST.
func (f *FS) Mkdir(ctx context.Context, path string, opts MkdirOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path = pathutil.Normalize(path)
	mode := opts.Mode
	if mode == 0 {
		mode = defaultDirMode
	}

	if opts.Recursive {
		return f.mkdirAll(ctx, path, mode)
	}

	existing, err := f.lookup(ctx, path)
	if err != nil {
		return err
	}
	if existing != nil {
		return vfserrors.New("mkdir", path, vfserrors.EEXIST)
	}
	parent, err := f.requireParentDir(ctx, "mkdir", path)
	if err != nil {
		return err
	}
	if err := f.createDir(ctx, path, parent.ID, mode); err != nil {
		return err
	}
	f.emitCreate(path, true, 0)
	return nil
}

func (f *FS) mkdirAll(ctx context.Context, path string, mode uint32) error {
	if path == "/" {
		return nil
	}
	existing, err := f.lookup(ctx, path)
	if err != nil {
		return err
	}
	if existing != nil {
		if !existing.IsDir() {
			return vfserrors.New("mkdir", path, vfserrors.ENOTDIR)
		}
		return nil
	}

	parentPath := pathutil.Dirname(path)
	if err := f.mkdirAll(ctx, parentPath, mode); err != nil {
		return err
	}
	parent, err := f.requireEntry(ctx, "mkdir", parentPath)
	if err != nil {
		return err
	}
	if err := f.createDir(ctx, path, parent.ID, mode); err != nil {
		return err
	}
	f.emitCreate(path, true, 0)
	return nil
}

func (f *FS) createDir(ctx context.Context, path string, parentID int64, mode uint32) error {
	_, err := f.meta.CreateEntry(ctx, metadata.NewEntryFields{
		Path:     path,
		Name:     pathutil.Basename(path, ""),
		ParentID: &parentID,
		Type:     metadata.TypeDirectory,
		Mode:     mode,
	})
	return err
}

// Rmdir removes an empty directory. With opts.Force, a missing path
// succeeds silently; with opts.Recursive, a non-empty directory is pruned
// entirely rather than failing with ENOTEMPTY.
func (f *FS) Rmdir(ctx context.Context, path string, opts RmOptions) error {
	e, err := f.lookup(ctx, pathutil.Normalize(path))
	if err != nil {
		return err
	}
	if e != nil && !e.IsDir() {
		return vfserrors.New("rmdir", path, vfserrors.ENOTDIR)
	}
	return f.Rm(ctx, path, opts)
}

// Rm removes a file or directory. With opts.Recursive a directory and all
// its descendants are removed; with opts.Force a nonexistent path
// succeeds silently instead of returning ENOENT.
func (f *FS) Rm(ctx context.Context, path string, opts RmOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path = pathutil.Normalize(path)
	e, err := f.lookup(ctx, path)
	if err != nil {
		return err
	}
	if e == nil {
		if opts.Force {
			return nil
		}
		return vfserrors.New("rm", path, vfserrors.ENOENT)
	}

	if e.IsDir() {
		children, err := f.meta.GetChildren(ctx, e.ID)
		if err != nil {
			return err
		}
		if len(children) > 0 && !opts.Recursive {
			return vfserrors.New("rm", path, vfserrors.ENOTEMPTY)
		}
		if err := f.removeTree(ctx, e); err != nil {
			return err
		}
		f.emitDelete(path, true)
		return nil
	}

	if err := f.removeFile(ctx, e); err != nil {
		return err
	}
	f.emitDelete(path, false)
	return nil
}

func (f *FS) removeTree(ctx context.Context, dir *metadata.Entry) error {
	children, err := f.meta.GetChildren(ctx, dir.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.IsDir() {
			if err := f.removeTree(ctx, child); err != nil {
				return err
			}
			continue
		}
		if err := f.removeFile(ctx, child); err != nil {
			return err
		}
	}
	return f.meta.DeleteEntry(ctx, dir.ID)
}

func (f *FS) removeFile(ctx context.Context, e *metadata.Entry) error {
	var j *blob.Journal
	err := f.meta.WithTx(ctx, func(ctx context.Context) error {
		if e.BlobID != nil {
			j = f.blobs.NewJournal()
			if err := f.blobs.Unref(ctx, j, *e.BlobID); err != nil {
				return err
			}
		}
		return f.meta.DeleteEntry(ctx, e.ID)
	})
	if j == nil {
		return err
	}
	if err != nil {
		j.Rollback(context.Background())
		return err
	}
	return j.Finalize(ctx)
}

// Unlink removes a single file entry (not a directory).
func (f *FS) Unlink(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, err := f.requireEntry(ctx, "unlink", path)
	if err != nil {
		return err
	}
	if e.IsDir() {
		return vfserrors.New("unlink", path, vfserrors.EISDIR)
	}
	if err := f.removeFile(ctx, e); err != nil {
		return err
	}
	f.emitDelete(pathutil.Normalize(path), false)
	return nil
}

// Readdir lists the children of a directory, paginated by name cursor.
func (f *FS) Readdir(ctx context.Context, path string, opts ReaddirOptions) (ReaddirResult, error) {
	dir, err := f.requireEntry(ctx, "readdir", path)
	if err != nil {
		return ReaddirResult{}, err
	}
	if !dir.IsDir() {
		return ReaddirResult{}, vfserrors.New("readdir", path, vfserrors.ENOTDIR)
	}

	children, err := f.meta.GetChildren(ctx, dir.ID)
	if err != nil {
		return ReaddirResult{}, err
	}

	start := 0
	if opts.Cursor != "" {
		for i, c := range children {
			if c.Name > opts.Cursor {
				start = i
				break
			}
			start = i + 1
		}
	}

	end := len(children)
	hasMore := false
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
		hasMore = true
	}

	result := ReaddirResult{HasMore: hasMore}
	for _, c := range children[start:end] {
		result.Entries = append(result.Entries, DirEntry{Name: c.Name, Type: c.Type})
	}
	if hasMore {
		result.NextCursor = children[end-1].Name
	}
	return result, nil
}

// List is a convenience wrapper over Readdir returning just the names.
func (f *FS) List(ctx context.Context, path string) ([]string, error) {
	res, err := f.Readdir(ctx, path, ReaddirOptions{})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(res.Entries))
	for i, e := range res.Entries {
		names[i] = e.Name
	}
	return names, nil
}
