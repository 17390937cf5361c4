package metadata

import (
	"context"
	"testing"
	"time"
)

func createTestEntry(t *testing.T, s *Store, ctx context.Context, path, name string, parentID int64) *Entry {
	t.Helper()
	id, err := s.CreateEntry(ctx, NewEntryFields{
		Path: path, Name: name, ParentID: &parentID, Type: TypeFile, Mode: 0o644, Size: 5,
	})
	if err != nil {
		t.Fatalf("CreateEntry(%q): %v", path, err)
	}
	e, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return e
}

func TestCreateAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := createTestEntry(t, s, ctx, "/hello.txt", "hello.txt", 1)
	if e.ATime != e.MTime || e.MTime != e.CTime || e.CTime != e.BirthTime {
		t.Errorf("expected all timestamps equal at creation, got %+v", e)
	}
	if e.Tier != TierHot {
		t.Errorf("Tier = %q, want hot default", e.Tier)
	}

	byPath, err := s.GetByPath(ctx, "/hello.txt")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if byPath == nil || byPath.ID != e.ID {
		t.Errorf("GetByPath mismatch: %+v", byPath)
	}
}

func TestCreateEntryDuplicatePathFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestEntry(t, s, ctx, "/dup.txt", "dup.txt", 1)

	_, err := s.CreateEntry(ctx, NewEntryFields{
		Path: "/dup.txt", Name: "dup.txt", ParentID: int64Ptr(1), Type: TypeFile, Mode: 0o644,
	})
	if err == nil {
		t.Fatal("expected error creating duplicate path")
	}
}

func TestUpdateEntryRefreshesCtime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := createTestEntry(t, s, ctx, "/a.txt", "a.txt", 1)
	time.Sleep(2 * time.Millisecond)

	newSize := int64(99)
	if err := s.UpdateEntry(ctx, e.ID, EntryUpdate{Size: &newSize}); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}

	updated, err := s.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Size != 99 {
		t.Errorf("Size = %d, want 99", updated.Size)
	}
	if updated.CTime <= e.CTime {
		t.Errorf("CTime = %d, want later than %d", updated.CTime, e.CTime)
	}
}

func TestUpdateEntryNonexistentIsIgnored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	size := int64(1)
	if err := s.UpdateEntry(ctx, 99999, EntryUpdate{Size: &size}); err != nil {
		t.Errorf("UpdateEntry on missing id should be silently ignored, got %v", err)
	}
}

func TestDeleteEntryIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := createTestEntry(t, s, ctx, "/gone.txt", "gone.txt", 1)

	if err := s.DeleteEntry(ctx, e.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if err := s.DeleteEntry(ctx, e.ID); err != nil {
		t.Errorf("second DeleteEntry should be a no-op, got %v", err)
	}

	remaining, err := s.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if remaining != nil {
		t.Errorf("expected entry gone after delete, got %+v", remaining)
	}
}

func TestGetByPathServesFromCacheUntilInvalidated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := createTestEntry(t, s, ctx, "/cached.txt", "cached.txt", 1)

	first, err := s.GetByPath(ctx, "/cached.txt")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if first == nil {
		t.Fatal("expected entry")
	}

	// Mutate the row directly, bypassing the Store API, so a cache hit and
	// a fresh read diverge observably.
	if _, err := s.db.ExecContext(ctx, "UPDATE entries SET mode = ? WHERE id = ?", 0o600, e.ID); err != nil {
		t.Fatalf("direct update: %v", err)
	}

	cached, err := s.GetByPath(ctx, "/cached.txt")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if cached.Mode != e.Mode {
		t.Fatalf("expected cached entry to retain mode %o, got %o", e.Mode, cached.Mode)
	}

	if err := s.UpdateEntry(ctx, e.ID, EntryUpdate{}); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}

	fresh, err := s.GetByPath(ctx, "/cached.txt")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if fresh.Mode != 0o600 {
		t.Fatalf("expected cache invalidated after a write, got mode %o", fresh.Mode)
	}
}

func TestGetByPathInsideTransactionBypassesCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestEntry(t, s, ctx, "/txview.txt", "txview.txt", 1)

	// Prime the cache with the pre-transaction state.
	entry, err := s.GetByPath(ctx, "/txview.txt")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}

	err = s.WithTx(ctx, func(ctx context.Context) error {
		mode := uint32(0o444)
		if err := s.UpdateEntry(ctx, entry.ID, EntryUpdate{Mode: &mode}); err != nil {
			return err
		}
		inTx, err := s.GetByPath(ctx, "/txview.txt")
		if err != nil {
			return err
		}
		if inTx.Mode != 0o444 {
			t.Fatalf("expected in-transaction read to see uncommitted mode, got %o", inTx.Mode)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestGetChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestEntry(t, s, ctx, "/b.txt", "b.txt", 1)
	createTestEntry(t, s, ctx, "/a.txt", "a.txt", 1)

	children, err := s.GetChildren(ctx, 1)
	if err != nil {
		t.Fatalf("GetChildren: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}
	if children[0].Name != "a.txt" || children[1].Name != "b.txt" {
		t.Errorf("children not ordered by name: %v, %v", children[0].Name, children[1].Name)
	}
}

func TestRenamePrefixRewritesDescendants(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dirID, err := s.CreateEntry(ctx, NewEntryFields{Path: "/a", Name: "a", ParentID: int64Ptr(1), Type: TypeDirectory, Mode: 0o755})
	if err != nil {
		t.Fatalf("CreateEntry dir: %v", err)
	}
	subID, err := s.CreateEntry(ctx, NewEntryFields{Path: "/a/b", Name: "b", ParentID: &dirID, Type: TypeDirectory, Mode: 0o755})
	if err != nil {
		t.Fatalf("CreateEntry subdir: %v", err)
	}
	_, err = s.CreateEntry(ctx, NewEntryFields{Path: "/a/b/f.txt", Name: "f.txt", ParentID: &subID, Type: TypeFile, Mode: 0o644})
	if err != nil {
		t.Fatalf("CreateEntry file: %v", err)
	}

	if err := s.RenamePrefix(ctx, "/a", "/z", "z", int64Ptr(1)); err != nil {
		t.Fatalf("RenamePrefix: %v", err)
	}

	if e, _ := s.GetByPath(ctx, "/a"); e != nil {
		t.Errorf("old path /a should be gone")
	}
	if e, _ := s.GetByPath(ctx, "/z/b/f.txt"); e == nil {
		t.Errorf("expected /z/b/f.txt to exist after rename")
	}
}

func TestCreateEntriesAtomicAllOrNone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateEntriesAtomic(ctx, []NewEntryFields{
		{Path: "/x1", Name: "x1", ParentID: int64Ptr(1), Type: TypeFile, Mode: 0o644},
		{Path: "/x1", Name: "x1", ParentID: int64Ptr(1), Type: TypeFile, Mode: 0o644}, // duplicate, should abort the batch
	})
	if err == nil {
		t.Fatal("expected error from duplicate path in batch")
	}

	e, err := s.GetByPath(ctx, "/x1")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if e != nil {
		t.Errorf("expected no entries committed after failed atomic batch, found %+v", e)
	}
}

func int64Ptr(v int64) *int64 { return &v }
