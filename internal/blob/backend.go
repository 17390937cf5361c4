// Package blob implements the tiered blob store: size-driven tier
// placement, transactional blob lifecycle (no orphaned blobs across a
// rolled-back metadata transaction), and promote/demote migration between
// hot, warm, and cold tiers.
package blob

import (
	"context"

	"github.com/durablefs/vfs/internal/metadata"
)

// Backend stores and retrieves opaque blob bytes for one tier. Hot is
// backed by the local filesystem; warm and cold are typically backed by a
// remote object store (S3Backend).
type Backend interface {
	// Put stores data under id, creating or overwriting it, and reports
	// the stored size.
	Put(ctx context.Context, id string, data []byte) (size int64, err error)
	// Get returns the full contents stored under id.
	Get(ctx context.Context, id string) ([]byte, error)
	// Delete removes id. Deleting a nonexistent id is not an error.
	Delete(ctx context.Context, id string) error
	// Head returns the stored size without fetching the bytes.
	Head(ctx context.Context, id string) (size int64, err error)
}

// Backends maps each tier to the Backend instance serving it. A nil entry
// means that tier is unconfigured; TierPolicy falls back to the next
// available tier when a preferred one is absent.
type Backends map[metadata.Tier]Backend

func (b Backends) get(tier metadata.Tier) Backend {
	return b[tier]
}
