package blob

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestHotBackendPutGetDelete(t *testing.T) {
	dir := t.TempDir()
	b, err := NewHotBackend(dir)
	if err != nil {
		t.Fatalf("NewHotBackend: %v", err)
	}
	ctx := context.Background()

	data := []byte("hello world")
	size, err := b.Put(ctx, "abc123", data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if size != int64(len(data)) {
		t.Errorf("size = %d, want %d", size, len(data))
	}

	got, err := b.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get = %q, want %q", got, data)
	}

	headSize, err := b.Head(ctx, "abc123")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if headSize != int64(len(data)) {
		t.Errorf("Head size = %d, want %d", headSize, len(data))
	}

	if err := b.Delete(ctx, "abc123"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := b.Get(ctx, "abc123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestHotBackendGetMissing(t *testing.T) {
	b, err := NewHotBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewHotBackend: %v", err)
	}
	if _, err := b.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestHotBackendDeleteMissingIsNotError(t *testing.T) {
	b, err := NewHotBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewHotBackend: %v", err)
	}
	if err := b.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("Delete missing = %v, want nil", err)
	}
}

func TestHotBackendShardsByPrefix(t *testing.T) {
	dir := t.TempDir()
	b, err := NewHotBackend(dir)
	if err != nil {
		t.Fatalf("NewHotBackend: %v", err)
	}
	p := b.path("ab12cd")
	want := filepath.Join(dir, "ab", "ab12cd")
	if p != want {
		t.Errorf("path = %q, want %q", p, want)
	}
}
