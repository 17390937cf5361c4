package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// CreateEntry inserts a new entry and returns its assigned id. All four
// timestamps are set equal to "now" at creation; tier defaults to hot.
func (s *Store) CreateEntry(ctx context.Context, f NewEntryFields) (int64, error) {
	now := nowMillis()
	tier := f.Tier
	if tier == "" {
		tier = TierHot
	}

	res, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO entries (path, name, parent_id, type, mode, uid, gid, nlink, size, blob_id, link_target, atime, mtime, ctime, birthtime, tier)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Path, f.Name, f.ParentID, string(f.Type), f.Mode, f.UID, f.GID, f.Size, f.BlobID, f.LinkTarget,
		now, now, now, now, string(tier))
	if err != nil {
		if isUniqueConstraint(err) {
			return 0, vfserrors.Wrap("createEntry", f.Path, vfserrors.EEXIST, err)
		}
		return 0, vfserrors.Wrap("createEntry", f.Path, vfserrors.EINVAL, err)
	}
	s.invalidatePathCache()
	return res.LastInsertId()
}

// invalidatePathCache drops every cached path lookup. Entry mutation
// touches at most a handful of paths per call but can shift ids/parents in
// ways that are cheaper to invalidate wholesale than to track precisely;
// the cache is a latency optimization for a single-writer store, not a
// correctness-critical index.
func (s *Store) invalidatePathCache() {
	if s.pathCache != nil {
		s.pathCache.Clear()
	}
}

// CreateEntriesAtomic creates every entry in fields within a single
// transaction: all succeed, or none do.
func (s *Store) CreateEntriesAtomic(ctx context.Context, fields []NewEntryFields) ([]int64, error) {
	var ids []int64
	err := s.WithTx(ctx, func(ctx context.Context) error {
		ids = make([]int64, 0, len(fields))
		for _, f := range fields {
			id, err := s.CreateEntry(ctx, f)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetByPath returns the entry at path, or nil if none exists. Lookups made
// outside an active transaction are served from the path cache when
// present; lookups inside a transaction always hit the database, since a
// transaction must see its own uncommitted writes.
func (s *Store) GetByPath(ctx context.Context, path string) (*Entry, error) {
	if _, inTx := txFromContext(ctx); !inTx && s.pathCache != nil {
		if e, ok := s.pathCache.Get(path); ok {
			return e, nil
		}
	}

	row := s.q(ctx).QueryRowContext(ctx, entrySelectCols+" WHERE path = ?", path)
	e, err := scanEntryOrNil(row)
	if err != nil {
		return nil, err
	}
	if e != nil {
		if _, inTx := txFromContext(ctx); !inTx && s.pathCache != nil {
			s.pathCache.Set(path, e)
		}
	}
	return e, nil
}

// GetByID returns the entry with the given id, or nil if none exists.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.q(ctx).QueryRowContext(ctx, entrySelectCols+" WHERE id = ?", id)
	return scanEntryOrNil(row)
}

// GetChildren returns every entry whose parent_id is parentID, ordered by
// name.
func (s *Store) GetChildren(ctx context.Context, parentID int64) ([]*Entry, error) {
	rows, err := s.q(ctx).QueryContext(ctx, entrySelectCols+" WHERE parent_id = ? ORDER BY name", parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateEntry applies a partial update to the entry with the given id.
// ctime is always refreshed; a nonexistent id is silently ignored so
// update and delete compose as idempotent operations.
func (s *Store) UpdateEntry(ctx context.Context, id int64, u EntryUpdate) error {
	sets := []string{"ctime = ?"}
	args := []any{nowMillis()}

	if u.Path != nil {
		sets = append(sets, "path = ?")
		args = append(args, *u.Path)
	}
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, *u.ParentID)
	}
	if u.Mode != nil {
		sets = append(sets, "mode = ?")
		args = append(args, *u.Mode)
	}
	if u.UID != nil {
		sets = append(sets, "uid = ?")
		args = append(args, *u.UID)
	}
	if u.GID != nil {
		sets = append(sets, "gid = ?")
		args = append(args, *u.GID)
	}
	if u.NLink != nil {
		sets = append(sets, "nlink = ?")
		args = append(args, *u.NLink)
	}
	if u.Size != nil {
		sets = append(sets, "size = ?")
		args = append(args, *u.Size)
	}
	if u.BlobID != nil {
		sets = append(sets, "blob_id = ?")
		args = append(args, *u.BlobID)
	}
	if u.LinkTarget != nil {
		sets = append(sets, "link_target = ?")
		args = append(args, *u.LinkTarget)
	}
	if u.ATime != nil {
		sets = append(sets, "atime = ?")
		args = append(args, *u.ATime)
	}
	if u.MTime != nil {
		sets = append(sets, "mtime = ?")
		args = append(args, *u.MTime)
	}
	if u.Tier != nil {
		sets = append(sets, "tier = ?")
		args = append(args, string(*u.Tier))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE entries SET %s WHERE id = ?", strings.Join(sets, ", "))
	_, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	s.invalidatePathCache()
	return nil
}

// DeleteEntry removes the entry with the given id. A nonexistent id is
// silently ignored.
func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	_, err := s.q(ctx).ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	s.invalidatePathCache()
	return nil
}

// RenamePrefix rewrites oldPath and every descendant path under it to
// newPath, atomically, for a directory rename. Callers are expected to
// invoke this within a transaction.
func (s *Store) RenamePrefix(ctx context.Context, oldPath, newPath, newName string, newParentID *int64) error {
	entry, err := s.GetByPath(ctx, oldPath)
	if err != nil {
		return err
	}
	if entry == nil {
		return vfserrors.New("rename", oldPath, vfserrors.ENOENT)
	}

	now := nowMillis()
	if _, err := s.q(ctx).ExecContext(ctx,
		`UPDATE entries SET path = ?, name = ?, parent_id = ?, ctime = ? WHERE id = ?`,
		newPath, newName, newParentID, now, entry.ID); err != nil {
		return err
	}

	if entry.Type != TypeDirectory {
		s.invalidatePathCache()
		return nil
	}

	oldPrefix := strings.TrimSuffix(oldPath, "/") + "/"
	newPrefix := strings.TrimSuffix(newPath, "/") + "/"

	rows, err := s.q(ctx).QueryContext(ctx,
		"SELECT id, path FROM entries WHERE path LIKE ? ESCAPE '\\'", escapeLike(oldPrefix)+"%")
	if err != nil {
		return err
	}
	type rewrite struct {
		id   int64
		path string
	}
	var rewrites []rewrite
	for rows.Next() {
		var r rewrite
		if err := rows.Scan(&r.id, &r.path); err != nil {
			rows.Close()
			return err
		}
		rewrites = append(rewrites, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range rewrites {
		updated := newPrefix + strings.TrimPrefix(r.path, oldPrefix)
		if _, err := s.q(ctx).ExecContext(ctx,
			"UPDATE entries SET path = ?, ctime = ? WHERE id = ?", updated, now, r.id); err != nil {
			return err
		}
	}
	s.invalidatePathCache()
	return nil
}

const entrySelectCols = `SELECT id, path, name, parent_id, type, mode, uid, gid, nlink, size, blob_id, link_target, atime, mtime, ctime, birthtime, tier FROM entries`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(r scanner) (*Entry, error) {
	var e Entry
	var parentID sql.NullInt64
	var blobID, linkTarget sql.NullString
	var typ, tier string

	if err := r.Scan(&e.ID, &e.Path, &e.Name, &parentID, &typ, &e.Mode, &e.UID, &e.GID, &e.NLink, &e.Size,
		&blobID, &linkTarget, &e.ATime, &e.MTime, &e.CTime, &e.BirthTime, &tier); err != nil {
		return nil, err
	}
	if parentID.Valid {
		e.ParentID = &parentID.Int64
	}
	if blobID.Valid {
		e.BlobID = &blobID.String
	}
	if linkTarget.Valid {
		e.LinkTarget = &linkTarget.String
	}
	e.Type = EntryType(typ)
	e.Tier = Tier(tier)
	return &e, nil
}

func scanEntryOrNil(row *sql.Row) (*Entry, error) {
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func isUniqueConstraint(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
