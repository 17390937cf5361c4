package vfs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/durablefs/vfs/internal/blob"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/internal/watch"
	"github.com/durablefs/vfs/pkg/vfs"
)

type memBackend struct{ data map[string][]byte }

func newMemBackend() *memBackend { return &memBackend{data: make(map[string][]byte)} }

func (m *memBackend) Put(ctx context.Context, id string, data []byte) (int64, error) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[id] = cp
	return int64(len(data)), nil
}

func (m *memBackend) Get(ctx context.Context, id string) ([]byte, error) {
	d, ok := m.data[id]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return d, nil
}

func (m *memBackend) Delete(ctx context.Context, id string) error {
	delete(m.data, id)
	return nil
}

func (m *memBackend) Head(ctx context.Context, id string) (int64, error) {
	d, ok := m.data[id]
	if !ok {
		return 0, blob.ErrNotFound
	}
	return int64(len(d)), nil
}

func newTestFS(t *testing.T) *vfs.FS {
	t.Helper()
	dir := t.TempDir()
	meta, err := metadata.Open(context.Background(), filepath.Join(dir, "vfs.db"))
	if err != nil {
		t.Fatalf("metadata.Open: %v", err)
	}
	t.Cleanup(func() { meta.Close() })

	backends := blob.Backends{metadata.TierHot: newMemBackend()}
	blobs := blob.New(meta, backends, blob.DefaultTierPolicy())
	watcher := watch.NewManager()
	t.Cleanup(watcher.Close)

	return vfs.New(vfs.Options{Meta: meta, Blobs: blobs, Watch: watcher})
}

func mustMkdir(t *testing.T, fs *vfs.FS, path string) {
	t.Helper()
	if err := fs.Mkdir(context.Background(), path, vfs.MkdirOptions{Recursive: true}); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWrite(t *testing.T, fs *vfs.FS, path string, data []byte) {
	t.Helper()
	if err := fs.WriteFile(context.Background(), path, data, vfs.WriteOptions{}); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
