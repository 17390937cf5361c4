package vfs

import (
	"context"

	"github.com/durablefs/vfs/internal/handle"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// Read reads the full content of path, or the inclusive byte range given
// by opts when opts.HasRange is set.
func (f *FS) Read(ctx context.Context, path string, opts ReadOptions) ([]byte, error) {
	fd, err := f.Open(ctx, path, handle.FlagRead, 0)
	if err != nil {
		return nil, err
	}
	defer f.CloseFD(ctx, fd)

	h, err := f.handleByFD(fd)
	if err != nil {
		return nil, err
	}
	st, err := h.Stat(ctx)
	if err != nil {
		return nil, err
	}

	start := int64(0)
	end := st.Size
	if opts.HasRange {
		start = opts.Start
		if opts.End > 0 && opts.End < end {
			end = opts.End + 1
		}
	}
	if start >= end {
		return []byte{}, nil
	}

	buf := make([]byte, end-start)
	n, err := f.ReadFD(ctx, fd, buf, 0, len(buf), &start)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// WriteFile replaces path's content with data, creating it if absent per
// opts.Flag (default "w"). A/Append-mode callers should prefer Append.
func (f *FS) WriteFile(ctx context.Context, path string, data []byte, opts WriteOptions) error {
	flag := handle.Flag(opts.Flag)
	if flag == "" {
		flag = handle.FlagWrite
	}
	fd, err := f.Open(ctx, path, flag, opts.Mode)
	if err != nil {
		return err
	}
	defer f.CloseFD(ctx, fd)

	if _, err := f.WriteFD(ctx, fd, data, nil); err != nil {
		return err
	}
	return f.SyncFD(ctx, fd)
}

// Append writes data at the end of path's existing content, creating it
// if absent.
func (f *FS) Append(ctx context.Context, path string, data []byte) error {
	return f.WriteFile(ctx, path, data, WriteOptions{Flag: string(handle.FlagAppend)})
}

// Truncate resizes path's content to length, zero-filling if it grows.
func (f *FS) Truncate(ctx context.Context, path string, length int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, err := f.requireEntry(ctx, "truncate", path)
	if err != nil {
		return err
	}
	if e.IsDir() {
		return vfserrors.New("truncate", path, vfserrors.EISDIR)
	}
	if length < 0 {
		return vfserrors.New("truncate", path, vfserrors.EINVAL)
	}
	if err := f.truncateEntry(ctx, e, length); err != nil {
		return err
	}
	f.emitModify(path, length, nowMillis())
	return nil
}

// truncateEntry resizes entry's content to length, allocating a new blob
// (length 0 clears the reference entirely) and unreferencing the old one.
func (f *FS) truncateEntry(ctx context.Context, entry *metadata.Entry, length int64) error {
	j := f.blobs.NewJournal()
	err := f.meta.WithTx(ctx, func(ctx context.Context) error {
		var current []byte
		if entry.BlobID != nil {
			data, err := f.blobs.Read(ctx, *entry.BlobID)
			if err != nil {
				return err
			}
			current = data
		}

		resized := make([]byte, length)
		copy(resized, current)

		var newBlobID *string
		if length > 0 {
			ref, err := f.blobs.Write(ctx, j, resized)
			if err != nil {
				return err
			}
			newBlobID = &ref.ID
		}

		if err := f.meta.UpdateEntry(ctx, entry.ID, metadata.EntryUpdate{
			BlobID: &newBlobID,
			Size:   &length,
		}); err != nil {
			return err
		}

		if entry.BlobID != nil {
			if err := f.blobs.Unref(ctx, j, *entry.BlobID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		j.Rollback(context.Background())
		return err
	}
	return j.Finalize(ctx)
}
