package metadata

import (
	"context"
	"strings"
)

// FindByPattern returns entries whose path matches glob, optionally scoped
// to the direct children of parentScope. glob is translated to a SQL LIKE
// predicate: '*' becomes '%', '?' becomes '_', and literal '%'/'_'/'\' in
// the pattern are escaped first so they are matched literally. This is an
// index-accelerated prefilter; full gitignore-style matching (brace
// alternation, character classes, dotfile rules) lives in pkg/pattern and
// is applied by callers on top of this result set when exact semantics
// matter.
func (s *Store) FindByPattern(ctx context.Context, glob string, parentScope *int64) ([]*Entry, error) {
	likePattern := globToLike(glob)

	query := entrySelectCols + " WHERE path LIKE ? ESCAPE '\\'"
	args := []any{likePattern}
	if parentScope != nil {
		query += " AND parent_id = ?"
		args = append(args, *parentScope)
	}
	query += " ORDER BY path"

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
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

func globToLike(glob string) string {
	var b strings.Builder
	for _, c := range glob {
		switch c {
		case '\\', '%', '_':
			b.WriteByte('\\')
			b.WriteRune(c)
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
