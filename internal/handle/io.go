package handle

import (
	"context"

	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// ReadResult is the outcome of a Read call.
type ReadResult struct {
	BytesRead int
}

// Read copies up to min(length, len(buffer)-offset, remainingInFile)
// bytes from position into buffer[offset:]. If position is nil, bytes
// are read from the handle's current position, which then advances by
// the number read; an explicit position leaves the handle position
// untouched.
func (h *Handle) Read(ctx context.Context, buffer []byte, offset int, length int, position *int64) (ReadResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkOpen(); err != nil {
		return ReadResult{}, err
	}
	if !h.flag.readable() {
		return ReadResult{}, vfserrors.New("read", "", vfserrors.EBADF)
	}
	if offset < 0 || length < 0 {
		return ReadResult{}, vfserrors.New("read", "", vfserrors.EINVAL)
	}
	if offset > len(buffer) {
		return ReadResult{}, vfserrors.New("read", "", vfserrors.EINVAL)
	}

	pos := h.position
	advances := position == nil
	if position != nil {
		if *position < 0 {
			return ReadResult{}, vfserrors.New("read", "", vfserrors.EINVAL)
		}
		pos = *position
	}

	if pos >= int64(len(h.buf)) {
		return ReadResult{BytesRead: 0}, nil
	}

	remaining := int64(len(h.buf)) - pos
	n := length
	if avail := len(buffer) - offset; n > avail {
		n = avail
	}
	if int64(n) > remaining {
		n = int(remaining)
	}
	if n < 0 {
		n = 0
	}

	copy(buffer[offset:offset+n], h.buf[pos:pos+int64(n)])
	if advances {
		h.position = pos + int64(n)
	}
	return ReadResult{BytesRead: n}, nil
}

// Write stores data at the resolved position, extending and zero-filling
// the working buffer as needed, and marks the handle dirty. Position
// resolution: a nil position uses the handle's current position; append
// mode ignores the given position entirely and always writes at the
// current end of the buffer.
func (h *Handle) Write(ctx context.Context, data []byte, position *int64) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkOpen(); err != nil {
		return 0, err
	}
	if !h.flag.writable() {
		return 0, vfserrors.New("write", "", vfserrors.EBADF)
	}

	var pos int64
	switch {
	case h.flag.appendMode():
		pos = int64(len(h.buf))
	case position != nil:
		if *position < 0 {
			return 0, vfserrors.New("write", "", vfserrors.EINVAL)
		}
		pos = *position
	default:
		pos = h.position
	}

	end := pos + int64(len(data))
	if end > int64(len(h.buf)) {
		grown := make([]byte, end)
		copy(grown, h.buf)
		h.buf = grown
	}
	copy(h.buf[pos:end], data)

	if h.flag.appendMode() || position == nil {
		h.position = end
	}

	now := nowMillis()
	h.mtime = now
	h.ctime = now
	h.dirty = true

	return len(data), nil
}

// WriteString is a convenience wrapper over Write for UTF-8 text.
func (h *Handle) WriteString(ctx context.Context, s string, position *int64) (int, error) {
	return h.Write(ctx, []byte(s), position)
}

// Truncate resizes the working buffer to length, zero-filling any
// extension. The dirty flag is only set if the size actually changes.
func (h *Handle) Truncate(ctx context.Context, length int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkOpen(); err != nil {
		return err
	}
	if length < 0 {
		return vfserrors.New("truncate", "", vfserrors.EINVAL)
	}
	if length == int64(len(h.buf)) {
		return nil
	}

	if length < int64(len(h.buf)) {
		h.buf = h.buf[:length]
	} else {
		grown := make([]byte, length)
		copy(grown, h.buf)
		h.buf = grown
	}

	now := nowMillis()
	h.mtime = now
	h.ctime = now
	h.dirty = true
	return nil
}

// Stat returns a snapshot of the handle's pending size and timestamps.
func (h *Handle) Stat(ctx context.Context) (Stat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkOpen(); err != nil {
		return Stat{}, err
	}
	return Stat{
		Size:  int64(len(h.buf)),
		MTime: h.mtime,
		CTime: h.ctime,
		Dirty: h.dirty,
	}, nil
}

// Sync flushes data and metadata to the backing store if dirty; it is a
// no-op otherwise. Idempotent.
func (h *Handle) Sync(ctx context.Context) error {
	return h.flush(ctx, true)
}

// Datasync flushes data (and enough metadata to locate it) but, unlike
// Sync, does not guarantee auxiliary metadata such as atime is durable.
// Idempotent.
func (h *Handle) Datasync(ctx context.Context) error {
	return h.flush(ctx, false)
}

func (h *Handle) flush(ctx context.Context, withMeta bool) error {
	h.mu.Lock()
	if err := h.checkOpen(); err != nil {
		h.mu.Unlock()
		return err
	}
	if !h.dirty {
		h.mu.Unlock()
		return nil
	}
	data := make([]byte, len(h.buf))
	copy(data, h.buf)
	size := int64(len(h.buf))
	mtime, ctime := h.mtime, h.ctime
	h.mu.Unlock()

	if h.flusher == nil {
		h.mu.Lock()
		h.dirty = false
		h.mu.Unlock()
		return nil
	}

	if err := h.flusher.FlushData(ctx, data); err != nil {
		return err
	}
	if withMeta {
		if err := h.flusher.FlushMeta(ctx, size, mtime, ctime); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.dirty = false
	h.mu.Unlock()
	return nil
}

// Close is idempotent; after it returns, every other operation fails
// with EBADF. Close does not implicitly sync — callers that need durable
// data on close must call Sync first.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
