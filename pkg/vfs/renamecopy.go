package vfs

import (
	"context"

	"github.com/durablefs/vfs/internal/blob"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/pathutil"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// Rename moves the entry at oldPath to newPath. A directory source is a
// transactional prefix rewrite of every descendant path; a file source
// simply updates its own path/name/parent.
func (f *FS) Rename(ctx context.Context, oldPath, newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	src, err := f.requireEntry(ctx, "rename", oldPath)
	if err != nil {
		return err
	}
	newPath = pathutil.Normalize(newPath)
	newParent, err := f.requireParentDir(ctx, "rename", newPath)
	if err != nil {
		return err
	}

	if dst, err := f.lookup(ctx, newPath); err != nil {
		return err
	} else if dst != nil {
		if dst.IsDir() {
			children, err := f.meta.GetChildren(ctx, dst.ID)
			if err != nil {
				return err
			}
			if len(children) > 0 {
				return vfserrors.New("rename", newPath, vfserrors.ENOTEMPTY)
			}
		}
		if dst.IsDir() != src.IsDir() {
			if dst.IsDir() {
				return vfserrors.New("rename", newPath, vfserrors.EISDIR)
			}
			return vfserrors.New("rename", newPath, vfserrors.ENOTDIR)
		}
		if err := f.removeEntryForReplace(ctx, dst); err != nil {
			return err
		}
	}

	newName := pathutil.Basename(newPath, "")
	err = f.meta.WithTx(ctx, func(ctx context.Context) error {
		return f.meta.RenamePrefix(ctx, src.Path, newPath, newName, &newParent.ID)
	})
	if err != nil {
		return err
	}
	f.emitRename(oldPath, newPath, src.IsDir())
	return nil
}

func (f *FS) removeEntryForReplace(ctx context.Context, e *metadata.Entry) error {
	if e.IsDir() {
		return f.meta.DeleteEntry(ctx, e.ID)
	}
	return f.removeFile(ctx, e)
}

// CopyFile copies src to dst. If src is a directory the copy is
// recursive; every blob write and entry insert for the whole tree happens
// inside one transaction, so the copy either fully succeeds or leaves no
// trace at dst.
func (f *FS) CopyFile(ctx context.Context, src, dst string, opts CopyOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	srcEntry, err := f.requireEntry(ctx, "copyFile", src)
	if err != nil {
		return err
	}

	existing, err := f.lookup(ctx, dst)
	if err != nil {
		return err
	}
	if existing != nil {
		if opts.ErrorOnExist {
			return vfserrors.New("copyFile", dst, vfserrors.EEXIST)
		}
		if !opts.Overwrite {
			return vfserrors.New("copyFile", dst, vfserrors.EEXIST)
		}
	}

	dst = pathutil.Normalize(dst)
	newParent, err := f.requireParentDir(ctx, "copyFile", dst)
	if err != nil {
		return err
	}

	j := f.blobs.NewJournal()
	err = f.meta.WithTx(ctx, func(ctx context.Context) error {
		if existing != nil {
			if err := f.removeEntryForReplace(ctx, existing); err != nil {
				return err
			}
		}
		return f.copyEntry(ctx, j, srcEntry, dst, pathutil.Basename(dst, ""), newParent.ID)
	})
	if err != nil {
		j.Rollback(context.Background())
		return err
	}
	if err := j.Finalize(ctx); err != nil {
		return err
	}
	f.emitCreate(dst, srcEntry.IsDir(), srcEntry.Size)
	return nil
}

func (f *FS) copyEntry(ctx context.Context, j *blob.Journal, src *metadata.Entry, dstPath, dstName string, parentID int64) error {
	if src.IsDir() {
		dirID, err := f.meta.CreateEntry(ctx, metadata.NewEntryFields{
			Path:     dstPath,
			Name:     dstName,
			ParentID: &parentID,
			Type:     metadata.TypeDirectory,
			Mode:     src.Mode,
		})
		if err != nil {
			return err
		}
		children, err := f.meta.GetChildren(ctx, src.ID)
		if err != nil {
			return err
		}
		for _, child := range children {
			childDst := pathutil.Join(dstPath, child.Name)
			if err := f.copyEntry(ctx, j, child, childDst, child.Name, dirID); err != nil {
				return err
			}
		}
		return nil
	}

	var blobID *string
	if src.BlobID != nil {
		data, err := f.blobs.Read(ctx, *src.BlobID)
		if err != nil {
			return err
		}
		ref, err := f.blobs.Write(ctx, j, data)
		if err != nil {
			return err
		}
		blobID = &ref.ID
	}

	_, err := f.meta.CreateEntry(ctx, metadata.NewEntryFields{
		Path:     dstPath,
		Name:     dstName,
		ParentID: &parentID,
		Type:     metadata.TypeFile,
		Mode:     src.Mode,
		Size:     src.Size,
		BlobID:   blobID,
	})
	return err
}
