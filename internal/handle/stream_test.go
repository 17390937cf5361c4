package handle

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestReadStreamYieldsChunksThenEOF(t *testing.T) {
	content := bytes.Repeat([]byte("a"), 40)
	h := New(Options{FD: 3, Flag: FlagRead, Initial: content})
	rs := NewReadStream(h, 16)
	ctx := context.Background()

	var got []byte
	for {
		chunk, err := rs.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, chunk...)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("got %d bytes, want %d", len(got), len(content))
	}
}

func TestReadStreamDefaultHighWaterMark(t *testing.T) {
	h := New(Options{FD: 3, Flag: FlagRead, Initial: []byte("x")})
	rs := NewReadStream(h, 0)
	if rs.highWaterMark != DefaultHighWaterMark {
		t.Errorf("highWaterMark = %d, want %d", rs.highWaterMark, DefaultHighWaterMark)
	}
}

func TestWriteStreamSplitsIntoChunks(t *testing.T) {
	fl := &fakeFlusher{}
	h := New(Options{FD: 3, Flag: FlagWrite, Flush: fl})
	ws := NewWriteStream(h, 4)
	ctx := context.Background()

	n, err := ws.Write(ctx, []byte("0123456789"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 10 {
		t.Errorf("n = %d, want 10", n)
	}
	if string(h.buf) != "0123456789" {
		t.Errorf("buf = %q", h.buf)
	}

	if err := ws.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fl.flushCalls != 1 {
		t.Errorf("flushCalls = %d, want 1", fl.flushCalls)
	}
}
