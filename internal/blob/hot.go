package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// HotBackend stores blob bytes on the local filesystem, co-located with
// the metadata store, serving the hot tier. Blobs are sharded by id
// prefix to keep any one directory from growing unbounded.
type HotBackend struct {
	dir string
}

// NewHotBackend creates a HotBackend rooted at dir, creating it if absent.
func NewHotBackend(dir string) (*HotBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create hot tier directory: %w", err)
	}
	return &HotBackend{dir: dir}, nil
}

func (b *HotBackend) path(id string) string {
	shard := id
	if len(shard) > 4 {
		shard = shard[:4]
	}
	return filepath.Join(b.dir, shard[:min(2, len(shard))], id)
}

func (b *HotBackend) Put(ctx context.Context, id string, data []byte) (int64, error) {
	p := b.path(id)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (b *HotBackend) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(b.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (b *HotBackend) Delete(ctx context.Context, id string) error {
	err := os.Remove(b.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (b *HotBackend) Head(ctx context.Context, id string) (int64, error) {
	info, err := os.Stat(b.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
