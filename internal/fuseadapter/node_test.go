package fuseadapter

import (
	"syscall"
	"testing"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/durablefs/vfs/internal/handle"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/vfs"
)

func TestFlagFromFUSE(t *testing.T) {
	cases := []struct {
		name  string
		flags uint32
		want  handle.Flag
	}{
		{"read-only", syscall.O_RDONLY, handle.FlagRead},
		{"write-only", syscall.O_WRONLY, handle.FlagWrite},
		{"write-append", syscall.O_WRONLY | syscall.O_APPEND, handle.FlagAppend},
		{"read-write", syscall.O_RDWR, handle.FlagReadWrite},
		{"read-write-append", syscall.O_RDWR | syscall.O_APPEND, handle.FlagAppendRead},
		{"read-write-trunc", syscall.O_RDWR | syscall.O_TRUNC, handle.FlagWriteRead},
	}
	for _, c := range cases {
		if got := flagFromFUSE(uint32(c.flags)); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestAttrFromInfoSetsTypeBits(t *testing.T) {
	var out fuse.Attr
	attrFromInfo(&out, vfs.FileInfo{Type: metadata.TypeDirectory, Mode: 0o755, Size: 10})
	if out.Mode&syscall.S_IFDIR == 0 {
		t.Fatalf("expected S_IFDIR bit set, got mode %o", out.Mode)
	}

	out = fuse.Attr{}
	attrFromInfo(&out, vfs.FileInfo{Type: metadata.TypeSymlink, Mode: 0o777})
	if out.Mode&syscall.S_IFLNK == 0 {
		t.Fatalf("expected S_IFLNK bit set, got mode %o", out.Mode)
	}

	out = fuse.Attr{}
	attrFromInfo(&out, vfs.FileInfo{Type: metadata.TypeFile, Mode: 0o644})
	if out.Mode&syscall.S_IFREG == 0 {
		t.Fatalf("expected S_IFREG bit set, got mode %o", out.Mode)
	}
}

func TestAttrFromInfoFloorsNlinkToOne(t *testing.T) {
	var out fuse.Attr
	attrFromInfo(&out, vfs.FileInfo{Type: metadata.TypeFile, NLink: 0})
	if out.Nlink != 1 {
		t.Fatalf("expected Nlink floored to 1, got %d", out.Nlink)
	}
}

func TestStableAttrForPicksModeByType(t *testing.T) {
	sa := stableAttrFor(vfs.FileInfo{Type: metadata.TypeDirectory})
	if sa.Mode&fuse.S_IFDIR == 0 {
		t.Fatalf("expected directory StableAttr mode, got %o", sa.Mode)
	}
}
