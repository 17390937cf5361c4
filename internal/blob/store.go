package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/durablefs/vfs/internal/metadata"
)

// Store is the tiered blob store: it places new content according to
// TierPolicy, journals writes/deletes against the enclosing metadata
// transaction, and migrates existing blobs between tiers on demand.
type Store struct {
	backends Backends
	policy   TierPolicy
	meta     *metadata.Store
	migrate  singleflight.Group
}

// New builds a Store over the given per-tier backends and metadata store.
func New(meta *metadata.Store, backends Backends, policy TierPolicy) *Store {
	return &Store{backends: backends, policy: policy, meta: meta}
}

// Write stores data as a new blob, choosing a tier via TierPolicy, and
// registers it in the metadata store with an initial reference count of
// one. If j is non-nil the write is recorded so a subsequent Rollback can
// undo it.
func (s *Store) Write(ctx context.Context, j *Journal, data []byte) (*metadata.BlobRef, error) {
	tier := s.policy.PlacementFor(int64(len(data)))
	backend, ok := s.resolveBackend(tier)
	if !ok {
		return nil, fmt.Errorf("blob: no backend configured for any tier")
	}

	id := uuid.NewString()
	size, err := backend.Put(ctx, id, data)
	if err != nil {
		return nil, err
	}
	if j != nil {
		j.recordWrite(tier, id)
	}

	sum := fmt.Sprintf("%016x", xxhash.Sum64(data))
	ref := metadata.BlobRef{
		ID:        id,
		Tier:      tier,
		Size:      size,
		Checksum:  &sum,
		RefCount:  1,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.meta.RegisterBlob(ctx, ref); err != nil {
		backend.Delete(ctx, id)
		return nil, err
	}
	return &ref, nil
}

// Read fetches the full bytes of blob id, looking up its tier first.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	ref, err := s.meta.GetBlob(ctx, id)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrNotFound
	}
	backend, ok := s.resolveBackend(ref.Tier)
	if !ok {
		return nil, fmt.Errorf("blob: no backend for tier %s", ref.Tier)
	}
	return backend.Get(ctx, id)
}

// Unref drops one reference from blob id. When the count reaches zero the
// metadata row is removed and the physical bytes are deleted: at once when
// j is nil, or journaled for deferred delete (on Finalize) if j is given.
func (s *Store) Unref(ctx context.Context, j *Journal, id string) error {
	count, err := s.meta.DecRefBlob(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	ref, err := s.meta.GetBlob(ctx, id)
	if err != nil {
		return err
	}
	var tier metadata.Tier
	if ref != nil {
		tier = ref.Tier
	}
	if err := s.meta.DeleteBlob(ctx, id); err != nil {
		return err
	}
	if j != nil {
		j.recordDelete(tier, id)
		return nil
	}
	backend, ok := s.resolveBackend(tier)
	if !ok {
		return nil
	}
	return backend.Delete(ctx, id)
}

// Sweep deletes every blob with a zero reference count, for backends with
// no journal coupling to a specific transaction (periodic background GC).
func (s *Store) Sweep(ctx context.Context) (int, error) {
	orphans, err := s.meta.UnreferencedBlobs(ctx)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, ref := range orphans {
		backend, ok := s.resolveBackend(ref.Tier)
		if ok {
			if err := backend.Delete(ctx, ref.ID); err != nil {
				return swept, err
			}
		}
		if err := s.meta.DeleteBlob(ctx, ref.ID); err != nil {
			return swept, err
		}
		swept++
	}
	return swept, nil
}

// Migrate moves blob id's bytes to the target tier and updates its
// metadata row, deduping concurrent requests for the same id so a hot
// blob doesn't get copied twice by racing promote/demote calls.
func (s *Store) Migrate(ctx context.Context, id string, target metadata.Tier) error {
	_, err, _ := s.migrate.Do(id, func() (interface{}, error) {
		return nil, s.migrateOnce(ctx, id, target)
	})
	return err
}

func (s *Store) migrateOnce(ctx context.Context, id string, target metadata.Tier) error {
	ref, err := s.meta.GetBlob(ctx, id)
	if err != nil {
		return err
	}
	if ref == nil {
		return ErrNotFound
	}
	if ref.Tier == target {
		return nil
	}

	src, ok := s.resolveBackend(ref.Tier)
	if !ok {
		return fmt.Errorf("blob: no backend for source tier %s", ref.Tier)
	}
	dst, ok := s.resolveBackend(target)
	if !ok {
		return fmt.Errorf("blob: no backend for target tier %s", target)
	}

	data, err := src.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := dst.Put(ctx, id, data); err != nil {
		return err
	}
	if err := s.meta.UpdateBlobTier(ctx, id, target); err != nil {
		dst.Delete(ctx, id)
		return err
	}
	return src.Delete(ctx, id)
}

// NewJournal starts a journal for one metadata transaction's blob writes
// and deletes.
func (s *Store) NewJournal() *Journal {
	return newJournal(s)
}

func (s *Store) resolveBackend(preferred metadata.Tier) (Backend, bool) {
	tier, ok := s.policy.Fallback(preferred, func(t metadata.Tier) bool {
		return s.backends.get(t) != nil
	})
	if !ok {
		return nil, false
	}
	return s.backends.get(tier), true
}
