package blob

import (
	"context"
	"sync"

	"github.com/durablefs/vfs/internal/metadata"
)

// Journal tracks blob writes and deletes made during one in-flight
// metadata transaction, so the physical blob lifecycle can be deferred
// until the transaction's fate (commit or rollback) is known. Without
// this, a blob delete issued mid-transaction would destroy bytes that a
// later rollback needs to restore, and a blob written mid-transaction
// would leak if the transaction never commits.
//
// The rule: deletes are recorded but not executed until Finalize; writes
// are executed immediately (so later reads in the same transaction see
// them) but are undone by Rollback if the transaction aborts.
type Journal struct {
	mu      sync.Mutex
	store   *Store
	written []pendingWrite
	deleted []pendingDelete
}

type pendingWrite struct {
	tier metadata.Tier
	id   string
}

type pendingDelete struct {
	tier metadata.Tier
	id   string
}

func newJournal(s *Store) *Journal {
	return &Journal{store: s}
}

func (j *Journal) recordWrite(tier metadata.Tier, id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.written = append(j.written, pendingWrite{tier: tier, id: id})
}

func (j *Journal) recordDelete(tier metadata.Tier, id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.deleted = append(j.deleted, pendingDelete{tier: tier, id: id})
}

// Finalize is called once the enclosing metadata transaction has
// committed. Deferred deletes are now safe to execute physically.
func (j *Journal) Finalize(ctx context.Context) error {
	j.mu.Lock()
	deletes := j.deleted
	j.deleted = nil
	j.written = nil
	j.mu.Unlock()

	var firstErr error
	for _, d := range deletes {
		backend := j.store.backends.get(d.tier)
		if backend == nil {
			continue
		}
		if err := backend.Delete(ctx, d.id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Rollback is called once the enclosing metadata transaction has been
// rolled back. Blobs written during the transaction are now orphaned and
// are deleted; deferred deletes are discarded since the entries they
// would have freed no longer reference anything new.
func (j *Journal) Rollback(ctx context.Context) error {
	j.mu.Lock()
	writes := j.written
	j.written = nil
	j.deleted = nil
	j.mu.Unlock()

	var firstErr error
	for _, w := range writes {
		backend := j.store.backends.get(w.tier)
		if backend == nil {
			continue
		}
		if err := backend.Delete(ctx, w.id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
