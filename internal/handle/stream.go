package handle

import (
	"context"
	"io"
)

// DefaultHighWaterMark is the chunk size streaming readers/writers use
// when the caller doesn't request a different one.
const DefaultHighWaterMark = 16 * 1024

// ReadStream pulls sequential chunks from a Handle without the caller
// managing position bookkeeping itself.
type ReadStream struct {
	h             *Handle
	highWaterMark int
}

// NewReadStream creates a ReadStream over h. highWaterMark <= 0 selects
// DefaultHighWaterMark.
func NewReadStream(h *Handle, highWaterMark int) *ReadStream {
	if highWaterMark <= 0 {
		highWaterMark = DefaultHighWaterMark
	}
	return &ReadStream{h: h, highWaterMark: highWaterMark}
}

// Next returns the next chunk, advancing the handle's position. It
// returns io.EOF once the handle position reaches the end of the buffer.
func (rs *ReadStream) Next(ctx context.Context) ([]byte, error) {
	buf := make([]byte, rs.highWaterMark)
	res, err := rs.h.Read(ctx, buf, 0, rs.highWaterMark, nil)
	if err != nil {
		return nil, err
	}
	if res.BytesRead == 0 {
		return nil, io.EOF
	}
	return buf[:res.BytesRead], nil
}

// WriteStream pushes sequential chunks into a Handle, always appending
// at the handle's current position.
type WriteStream struct {
	h             *Handle
	highWaterMark int
}

// NewWriteStream creates a WriteStream over h.
func NewWriteStream(h *Handle, highWaterMark int) *WriteStream {
	if highWaterMark <= 0 {
		highWaterMark = DefaultHighWaterMark
	}
	return &WriteStream{h: h, highWaterMark: highWaterMark}
}

// Write pushes chunk to the handle, splitting it into highWaterMark-sized
// writes so no single underlying Write call grows the buffer by more
// than the configured chunk size at once.
func (ws *WriteStream) Write(ctx context.Context, chunk []byte) (int, error) {
	written := 0
	for len(chunk) > 0 {
		n := len(chunk)
		if n > ws.highWaterMark {
			n = ws.highWaterMark
		}
		wrote, err := ws.h.Write(ctx, chunk[:n], nil)
		written += wrote
		if err != nil {
			return written, err
		}
		chunk = chunk[n:]
	}
	return written, nil
}

// Close flushes any pending writes to the backing store.
func (ws *WriteStream) Close(ctx context.Context) error {
	return ws.h.Sync(ctx)
}
