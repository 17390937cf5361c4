// Package handle implements the file-handle I/O core: positioned and
// sequential read/write over an in-memory working buffer, append mode,
// truncate, dirty tracking, and idempotent sync/close. It has no
// knowledge of the metadata store or blob store — pkg/vfs wires a
// Flusher that persists a handle's buffer on sync/close.
package handle

import (
	"context"
	"sync"
	"time"

	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// Flag is a POSIX-style open mode.
type Flag string

const (
	FlagRead       Flag = "r"
	FlagWrite      Flag = "w"
	FlagAppend     Flag = "a"
	FlagReadWrite  Flag = "r+"
	FlagWriteRead  Flag = "w+"
	FlagAppendRead Flag = "a+"
	FlagExclusive  Flag = "x"
)

// Capabilities reports what a Flag permits.
func (f Flag) readable() bool {
	switch f {
	case FlagRead, FlagReadWrite, FlagWriteRead, FlagAppendRead:
		return true
	default:
		return false
	}
}

func (f Flag) writable() bool {
	switch f {
	case FlagWrite, FlagAppend, FlagReadWrite, FlagWriteRead, FlagAppendRead, FlagExclusive:
		return true
	default:
		return false
	}
}

func (f Flag) appendMode() bool {
	return f == FlagAppend || f == FlagAppendRead
}

// requiresExisting reports whether opening with f fails if the target is
// absent; truncatesExisting reports whether opening an existing file discards its
// content.
func (f Flag) requiresExisting() bool {
	return f == FlagRead || f == FlagReadWrite
}

func (f Flag) truncatesExisting() bool {
	return f == FlagWrite || f == FlagWriteRead
}

// createsIfAbsent reports whether opening with f creates the target when
// it doesn't already exist.
func (f Flag) createsIfAbsent() bool {
	return f != FlagRead && f != FlagReadWrite
}

// Readable, Writable, AppendMode, RequiresExisting, TruncatesExisting, and
// CreatesIfAbsent expose the same capability predicates to callers outside
// the package, e.g. pkg/vfs deciding how to resolve an Open call.
func (f Flag) Readable() bool          { return f.readable() }
func (f Flag) Writable() bool          { return f.writable() }
func (f Flag) AppendMode() bool        { return f.appendMode() }
func (f Flag) RequiresExisting() bool  { return f.requiresExisting() }
func (f Flag) TruncatesExisting() bool { return f.truncatesExisting() }
func (f Flag) CreatesIfAbsent() bool   { return f.createsIfAbsent() }

// Flusher persists a handle's buffer and/or metadata. pkg/vfs supplies an
// implementation backed by the blob store and metadata store.
type Flusher interface {
	// FlushData writes data as the entry's new content, durable to the
	// blob store.
	FlushData(ctx context.Context, data []byte) error
	// FlushMeta updates the entry's size/mtime/ctime in the metadata
	// store without necessarily persisting new blob bytes.
	FlushMeta(ctx context.Context, size int64, mtime, ctime int64) error
}

// Stat is a point-in-time snapshot of a handle's state.
type Stat struct {
	Size  int64
	MTime int64
	CTime int64
	Dirty bool
}

// Handle is an open file descriptor: an in-memory working buffer plus
// position, mode flags, and dirty/closed state. Handles are not safe for
// concurrent use by multiple callers; callers must confine a handle to a
// single logical owner.
type Handle struct {
	mu sync.Mutex

	fd      int
	flag    Flag
	flusher Flusher

	buf      []byte
	position int64

	mtime  int64
	ctime  int64
	dirty  bool
	closed bool
}

// Options configures a new Handle.
type Options struct {
	FD      int
	Flag    Flag
	Flush   Flusher
	Initial []byte // existing content, or nil for a newly created file
	MTime   int64
	CTime   int64
}

// New constructs a Handle. Initial is copied so later external mutation
// of the slice doesn't alias the handle's working buffer.
func New(opts Options) *Handle {
	buf := make([]byte, len(opts.Initial))
	copy(buf, opts.Initial)
	return &Handle{
		fd:      opts.FD,
		flag:    opts.Flag,
		flusher: opts.Flush,
		buf:     buf,
		mtime:   opts.MTime,
		ctime:   opts.CTime,
	}
}

// FD returns the handle's descriptor number.
func (h *Handle) FD() int { return h.fd }

func nowMillis() int64 { return time.Now().UnixMilli() }

func (h *Handle) checkOpen() error {
	if h.closed {
		return vfserrors.New("handle", "", vfserrors.EBADF)
	}
	return nil
}
