// Package vfs assembles the metadata store, blob store, and file-handle
// core into the full POSIX-like filesystem API: read, write, open,
// mkdir, rename, symlink, watch, and the tiered promote/demote
// operations. It is the single owner of all three subsystems and the
// only package that composes them.
package vfs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/durablefs/vfs/internal/blob"
	"github.com/durablefs/vfs/internal/handle"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/internal/watch"
)

// FS is the top-level filesystem instance. It owns the metadata store,
// the tiered blob store, every open file handle, and the watch manager.
// All exported methods are safe for concurrent use; the coarse writer
// lock serializes operations that span multiple store calls (e.g.
// rename, copyFile, promote/demote) so they appear atomic to concurrent
// callers, even though internal/metadata.Store.WithTx already serializes
// at the SQLite connection level.
type FS struct {
	mu sync.Mutex

	meta  *metadata.Store
	blobs *blob.Store
	watch *watch.Manager
	log   zerolog.Logger

	handles map[int]*handle.Handle
	nextFD  atomic.Int64
}

// Options configures a new FS.
type Options struct {
	Meta   *metadata.Store
	Blobs  *blob.Store
	Watch  *watch.Manager
	Logger zerolog.Logger
}

// New assembles an FS from already-opened component stores. Callers are
// expected to construct Meta/Blobs/Watch from internal/config's settings
// and pass them in; FS does not own their lifecycle beyond Close.
func New(opts Options) *FS {
	fs := &FS{
		meta:    opts.Meta,
		blobs:   opts.Blobs,
		watch:   opts.Watch,
		log:     opts.Logger,
		handles: make(map[int]*handle.Handle),
	}
	fs.nextFD.Store(2) // descriptors 0-2 reserved; first issued fd is 3
	return fs
}

// Close releases every open handle, stops the watch manager's pending
// timers, and closes the underlying metadata store. Blob backends are
// owned by the caller that built them and are not closed here.
func (f *FS) Close(ctx context.Context) error {
	f.mu.Lock()
	handles := f.handles
	f.handles = make(map[int]*handle.Handle)
	f.mu.Unlock()

	for _, h := range handles {
		_ = h.Close(ctx)
	}
	if f.watch != nil {
		f.watch.Close()
	}
	return f.meta.Close()
}

func (f *FS) allocFD() int {
	return int(f.nextFD.Add(1))
}

func (f *FS) registerHandle(h *handle.Handle) {
	f.mu.Lock()
	f.handles[h.FD()] = h
	f.mu.Unlock()
}

func (f *FS) releaseHandle(fd int) {
	f.mu.Lock()
	delete(f.handles, fd)
	f.mu.Unlock()
}

func (f *FS) handleByFD(fd int) (*handle.Handle, error) {
	f.mu.Lock()
	h, ok := f.handles[fd]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("vfs: no open handle with fd %d", fd)
	}
	return h, nil
}
