package sparse

import (
	"context"
	"path"
	"strings"

	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/pathutil"
	"github.com/durablefs/vfs/pkg/vfs"
)

// ReaddirOptions extends vfs.ReaddirOptions with sparse-specific entry
// filters. Filter is a glob applied to each entry's name (not its full
// path); Type restricts to one entry kind; IncludeHidden controls whether
// dot-prefixed names are returned (nil means true, matching the underlying
// filesystem).
type ReaddirOptions struct {
	vfs.ReaddirOptions
	Filter        string
	Type          metadata.EntryType
	IncludeHidden *bool
}

// Readdir lists path's children that both pass the pattern checker and
// opts' post-hoc filters. A nil opts.IncludeHidden means true; point it at
// false to drop dot-prefixed names.
func (f *FS) Readdir(ctx context.Context, dir string, opts ReaddirOptions) (vfs.ReaddirResult, error) {
	if !f.included(dir) {
		return vfs.ReaddirResult{}, notFound("readdir", dir)
	}

	res, err := f.under.Readdir(ctx, dir, opts.ReaddirOptions)
	if err != nil {
		return vfs.ReaddirResult{}, err
	}

	includeHidden := opts.IncludeHidden == nil || *opts.IncludeHidden
	filtered := res.Entries[:0:0]
	for _, e := range res.Entries {
		childPath := pathutil.Join(dir, e.Name)
		if !f.included(childPath) {
			continue
		}
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if !includeHidden && strings.HasPrefix(e.Name, ".") {
			continue
		}
		if opts.Filter != "" {
			ok, err := path.Match(opts.Filter, e.Name)
			if err != nil || !ok {
				continue
			}
		}
		filtered = append(filtered, e)
	}
	res.Entries = filtered
	return res, nil
}

// List returns just the names of path's visible, filtered children.
func (f *FS) List(ctx context.Context, dir string, opts ReaddirOptions) ([]string, error) {
	res, err := f.Readdir(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(res.Entries))
	for i, e := range res.Entries {
		names[i] = e.Name
	}
	return names, nil
}

// ShouldTraverseDirectory reports whether a recursive walk should descend
// into dir at all. Used to prune subtrees the checker can never include,
// preserving performance when patterns are narrow.
func (f *FS) ShouldTraverseDirectory(dir string) bool {
	return f.checker.ShouldTraverseDirectory(f.relative(dir))
}

// Walk visits every visible descendant of root (root itself is not
// visited), calling fn with each entry's full path and name. Directories
// pruned by ShouldTraverseDirectory are skipped entirely, without
// descending into them.
func (f *FS) Walk(ctx context.Context, root string, fn func(path string, info vfs.FileInfo) error) error {
	return f.walk(ctx, root, fn)
}

func (f *FS) walk(ctx context.Context, dir string, fn func(string, vfs.FileInfo) error) error {
	if !f.ShouldTraverseDirectory(dir) {
		return nil
	}
	res, err := f.under.Readdir(ctx, dir, vfs.ReaddirOptions{})
	if err != nil {
		return err
	}
	for {
		for _, e := range res.Entries {
			childPath := pathutil.Join(dir, e.Name)
			if !f.included(childPath) {
				continue
			}
			info, err := f.under.Lstat(ctx, childPath)
			if err != nil {
				return err
			}
			if err := fn(childPath, info); err != nil {
				return err
			}
			if info.IsDir() {
				if err := f.walk(ctx, childPath, fn); err != nil {
					return err
				}
			}
		}
		if !res.HasMore {
			return nil
		}
		res, err = f.under.Readdir(ctx, dir, vfs.ReaddirOptions{Cursor: res.NextCursor})
		if err != nil {
			return err
		}
	}
}
