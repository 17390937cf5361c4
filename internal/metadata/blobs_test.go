package metadata

import (
	"context"
	"testing"
)

func TestRegisterAndGetBlob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	checksum := "abc123"
	err := s.RegisterBlob(ctx, BlobRef{ID: "blob-1", Tier: TierHot, Size: 42, Checksum: &checksum, RefCount: 1, CreatedAt: nowMillis()})
	if err != nil {
		t.Fatalf("RegisterBlob: %v", err)
	}

	b, err := s.GetBlob(ctx, "blob-1")
	if err != nil {
		t.Fatalf("GetBlob: %v", err)
	}
	if b == nil {
		t.Fatal("expected blob to exist")
	}
	if b.Size != 42 || b.Tier != TierHot {
		t.Errorf("unexpected blob: %+v", b)
	}
}

func TestRefCounting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.RegisterBlob(ctx, BlobRef{ID: "shared", Tier: TierHot, Size: 1, RefCount: 1, CreatedAt: nowMillis()}); err != nil {
		t.Fatalf("RegisterBlob: %v", err)
	}

	if err := s.IncRefBlob(ctx, "shared"); err != nil {
		t.Fatalf("IncRefBlob: %v", err)
	}
	b, _ := s.GetBlob(ctx, "shared")
	if b.RefCount != 2 {
		t.Errorf("RefCount = %d, want 2", b.RefCount)
	}

	count, err := s.DecRefBlob(ctx, "shared")
	if err != nil {
		t.Fatalf("DecRefBlob: %v", err)
	}
	if count != 1 {
		t.Errorf("DecRefBlob returned %d, want 1", count)
	}
}

func TestUnreferencedBlobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.RegisterBlob(ctx, BlobRef{ID: "orphan", Tier: TierHot, Size: 1, RefCount: 0, CreatedAt: nowMillis()}); err != nil {
		t.Fatalf("RegisterBlob: %v", err)
	}
	if err := s.RegisterBlob(ctx, BlobRef{ID: "used", Tier: TierHot, Size: 1, RefCount: 1, CreatedAt: nowMillis()}); err != nil {
		t.Fatalf("RegisterBlob: %v", err)
	}

	orphans, err := s.UnreferencedBlobs(ctx)
	if err != nil {
		t.Fatalf("UnreferencedBlobs: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != "orphan" {
		t.Errorf("UnreferencedBlobs = %+v, want only 'orphan'", orphans)
	}
}
