package vfs

import (
	"context"

	"github.com/durablefs/vfs/internal/handle"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/pathutil"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// entryFlusher implements handle.Flusher by writing a handle's buffer as a
// new blob (content is immutable once committed; a write allocates a new
// blob id and swaps the entry's blobId) and updating the entry's
// size/mtime/ctime/tier in the metadata store.
type entryFlusher struct {
	fs      *FS
	entryID int64
	path    string
}

func (ef *entryFlusher) FlushData(ctx context.Context, data []byte) error {
	j := ef.fs.blobs.NewJournal()
	var size int64
	var mtime int64
	err := ef.fs.meta.WithTx(ctx, func(ctx context.Context) error {
		entry, err := ef.fs.meta.GetByID(ctx, ef.entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return vfserrors.New("write", ef.path, vfserrors.ENOENT)
		}

		ref, err := ef.fs.blobs.Write(ctx, j, data)
		if err != nil {
			return err
		}

		oldBlobID := entry.BlobID
		blobID := ref.ID
		blobIDPtr := &blobID
		size = ref.Size
		tier := ref.Tier
		mtime = nowMillis()
		if err := ef.fs.meta.UpdateEntry(ctx, ef.entryID, metadata.EntryUpdate{
			BlobID: &blobIDPtr,
			Size:   &size,
			MTime:  &mtime,
			Tier:   &tier,
		}); err != nil {
			return err
		}

		if oldBlobID != nil {
			if err := ef.fs.blobs.Unref(ctx, j, *oldBlobID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		j.Rollback(context.Background())
		return err
	}
	if err := j.Finalize(ctx); err != nil {
		return err
	}
	ef.fs.emitModify(ef.path, size, mtime)
	return nil
}

func (ef *entryFlusher) FlushMeta(ctx context.Context, size int64, mtime, ctime int64) error {
	return ef.fs.meta.UpdateEntry(ctx, ef.entryID, metadata.EntryUpdate{Size: &size, MTime: &mtime})
}

// Open resolves path per flag's creation/truncation semantics and returns
// a file descriptor bound to an in-memory handle over its content. The
// descriptor must eventually be released with CloseFD.
func (f *FS) Open(ctx context.Context, path string, flag handle.Flag, mode uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path = pathutil.Normalize(path)
	entry, err := f.lookup(ctx, path)
	if err != nil {
		return 0, err
	}

	if entry == nil {
		if !flag.CreatesIfAbsent() {
			return 0, vfserrors.New("open", path, vfserrors.ENOENT)
		}
		parent, err := f.requireParentDir(ctx, "open", path)
		if err != nil {
			return 0, err
		}
		if mode == 0 {
			mode = defaultFileMode
		}
		id, err := f.meta.CreateEntry(ctx, metadata.NewEntryFields{
			Path:     path,
			Name:     pathutil.Basename(path, ""),
			ParentID: &parent.ID,
			Type:     metadata.TypeFile,
			Mode:     mode,
		})
		if err != nil {
			return 0, err
		}
		entry, err = f.meta.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		f.emitCreate(path, false, 0)
	} else if entry.IsDir() {
		return 0, vfserrors.New("open", path, vfserrors.EISDIR)
	}

	var initial []byte
	if entry.BlobID != nil && !flag.TruncatesExisting() {
		initial, err = f.blobs.Read(ctx, *entry.BlobID)
		if err != nil {
			return 0, err
		}
	}

	if flag.TruncatesExisting() && entry.BlobID != nil {
		if err := f.truncateEntry(ctx, entry, 0); err != nil {
			return 0, err
		}
	}

	fd := f.allocFD()
	h := handle.New(handle.Options{
		FD:      fd,
		Flag:    flag,
		Flush:   &entryFlusher{fs: f, entryID: entry.ID, path: path},
		Initial: initial,
		MTime:   entry.MTime,
		CTime:   entry.CTime,
	})
	f.registerHandle(h)
	return fd, nil
}

// ReadFD reads from an open file descriptor.
func (f *FS) ReadFD(ctx context.Context, fd int, buffer []byte, offset, length int, position *int64) (int, error) {
	h, err := f.handleByFD(fd)
	if err != nil {
		return 0, vfserrors.Wrap("read", "", vfserrors.EBADF, err)
	}
	res, err := h.Read(ctx, buffer, offset, length, position)
	return res.BytesRead, err
}

// WriteFD writes to an open file descriptor.
func (f *FS) WriteFD(ctx context.Context, fd int, data []byte, position *int64) (int, error) {
	h, err := f.handleByFD(fd)
	if err != nil {
		return 0, vfserrors.Wrap("write", "", vfserrors.EBADF, err)
	}
	return h.Write(ctx, data, position)
}

// SyncFD flushes an open file descriptor's buffer to durable storage.
func (f *FS) SyncFD(ctx context.Context, fd int) error {
	h, err := f.handleByFD(fd)
	if err != nil {
		return vfserrors.Wrap("sync", "", vfserrors.EBADF, err)
	}
	return h.Sync(ctx)
}

// CloseFD syncs and releases an open file descriptor.
func (f *FS) CloseFD(ctx context.Context, fd int) error {
	h, err := f.handleByFD(fd)
	if err != nil {
		return vfserrors.Wrap("close", "", vfserrors.EBADF, err)
	}
	syncErr := h.Sync(ctx)
	closeErr := h.Close(ctx)
	f.releaseHandle(fd)
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}

// CreateReadStream opens path for reading and returns a streaming reader
// plus a closer that releases the underlying descriptor.
func (f *FS) CreateReadStream(ctx context.Context, path string, highWaterMark int) (*handle.ReadStream, func(context.Context) error, error) {
	fd, err := f.Open(ctx, path, handle.FlagRead, 0)
	if err != nil {
		return nil, nil, err
	}
	h, err := f.handleByFD(fd)
	if err != nil {
		return nil, nil, err
	}
	closer := func(ctx context.Context) error { return f.CloseFD(ctx, fd) }
	return handle.NewReadStream(h, highWaterMark), closer, nil
}

// CreateWriteStream opens path for writing and returns a streaming writer
// plus a closer that flushes and releases the underlying descriptor.
func (f *FS) CreateWriteStream(ctx context.Context, path string, mode uint32, highWaterMark int) (*handle.WriteStream, func(context.Context) error, error) {
	fd, err := f.Open(ctx, path, handle.FlagWrite, mode)
	if err != nil {
		return nil, nil, err
	}
	h, err := f.handleByFD(fd)
	if err != nil {
		return nil, nil, err
	}
	closer := func(ctx context.Context) error { return f.CloseFD(ctx, fd) }
	return handle.NewWriteStream(h, highWaterMark), closer, nil
}
