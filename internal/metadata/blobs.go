package metadata

import (
	"context"
	"database/sql"
	"errors"
)

// RegisterBlob inserts a blob row with the given reference count. Blob
// content itself lives in the blob store (internal/blob); this table only
// tracks its tier, size, checksum, and how many entries point to it.
func (s *Store) RegisterBlob(ctx context.Context, b BlobRef) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO blobs (id, tier, size, checksum, ref_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Tier), b.Size, b.Checksum, b.RefCount, b.CreatedAt)
	return err
}

// GetBlob returns the blob row for id, or nil if none exists.
func (s *Store) GetBlob(ctx context.Context, id string) (*BlobRef, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, tier, size, checksum, ref_count, created_at FROM blobs WHERE id = ?`, id)
	return scanBlobOrNil(row)
}

// UpdateBlobTier moves a blob row to a new tier, e.g. after a promote or
// demote migration relocated its bytes.
func (s *Store) UpdateBlobTier(ctx context.Context, id string, tier Tier) error {
	_, err := s.q(ctx).ExecContext(ctx, `UPDATE blobs SET tier = ? WHERE id = ?`, string(tier), id)
	return err
}

// IncRefBlob increments a blob's reference count, e.g. for a new hard link.
func (s *Store) IncRefBlob(ctx context.Context, id string) error {
	_, err := s.q(ctx).ExecContext(ctx, `UPDATE blobs SET ref_count = ref_count + 1 WHERE id = ?`, id)
	return err
}

// DecRefBlob decrements a blob's reference count and reports the count
// afterward, so callers can decide whether to delete the underlying bytes
// at zero.
func (s *Store) DecRefBlob(ctx context.Context, id string) (int, error) {
	if _, err := s.q(ctx).ExecContext(ctx,
		`UPDATE blobs SET ref_count = ref_count - 1 WHERE id = ? AND ref_count > 0`, id); err != nil {
		return 0, err
	}
	var count int
	row := s.q(ctx).QueryRowContext(ctx, `SELECT ref_count FROM blobs WHERE id = ?`, id)
	if err := row.Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// DeleteBlob removes the blob row. The underlying bytes in the blob store
// are not touched; deleting them is up to the caller.
func (s *Store) DeleteBlob(ctx context.Context, id string) error {
	_, err := s.q(ctx).ExecContext(ctx, `DELETE FROM blobs WHERE id = ?`, id)
	return err
}

// UnreferencedBlobs returns every blob row with ref_count = 0, candidates
// for the background orphan sweep.
func (s *Store) UnreferencedBlobs(ctx context.Context) ([]*BlobRef, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, tier, size, checksum, ref_count, created_at FROM blobs WHERE ref_count = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*BlobRef
	for rows.Next() {
		b, err := scanBlob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBlob(r scanner) (*BlobRef, error) {
	var b BlobRef
	var checksum sql.NullString
	var tier string
	if err := r.Scan(&b.ID, &tier, &b.Size, &checksum, &b.RefCount, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Tier = Tier(tier)
	if checksum.Valid {
		b.Checksum = &checksum.String
	}
	return &b, nil
}

func scanBlobOrNil(row *sql.Row) (*BlobRef, error) {
	b, err := scanBlob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}
