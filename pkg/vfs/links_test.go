package vfs_test

import (
	"context"
	"testing"

	"github.com/durablefs/vfs/pkg/vfs"
	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

func TestSymlinkAndReadlink(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	mustWrite(t, fs, "/target", []byte("content"))

	if err := fs.Symlink(ctx, "/target", "/link"); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	target, err := fs.Readlink(ctx, "/link")
	if err != nil {
		t.Fatalf("readlink: %v", err)
	}
	if target != "/target" {
		t.Fatalf("expected %q, got %q", "/target", target)
	}
}

func TestStatFollowsSymlinkLstatDoesNot(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	mustWrite(t, fs, "/target", []byte("content"))
	if err := fs.Symlink(ctx, "/target", "/link"); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	lInfo, err := fs.Lstat(ctx, "/link")
	if err != nil {
		t.Fatalf("lstat: %v", err)
	}
	if lInfo.LinkTarget != "/target" {
		t.Fatalf("lstat should report the link itself, got %+v", lInfo)
	}

	sInfo, err := fs.Stat(ctx, "/link")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if sInfo.Path != "/target" {
		t.Fatalf("stat should resolve to target, got %+v", sInfo)
	}
}

func TestSymlinkCycleFailsELOOP(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()

	if err := fs.Symlink(ctx, "/b", "/a"); err != nil {
		t.Fatalf("symlink a->b: %v", err)
	}
	if err := fs.Symlink(ctx, "/a", "/b"); err != nil {
		t.Fatalf("symlink b->a: %v", err)
	}

	_, err := fs.Stat(ctx, "/a")
	if code, ok := vfserrors.CodeOf(err); !ok || code != vfserrors.ELOOP {
		t.Fatalf("expected ELOOP, got %v", err)
	}
}

func TestLinkSharesContentAndRefcount(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	mustWrite(t, fs, "/a", []byte("shared"))

	if err := fs.Link(ctx, "/a", "/b"); err != nil {
		t.Fatalf("link: %v", err)
	}

	data, err := fs.Read(ctx, "/b", vfs.ReadOptions{})
	if err != nil {
		t.Fatalf("read linked file: %v", err)
	}
	if string(data) != "shared" {
		t.Fatalf("expected %q, got %q", "shared", data)
	}

	if err := fs.Unlink(ctx, "/a"); err != nil {
		t.Fatalf("unlink original: %v", err)
	}
	data, err = fs.Read(ctx, "/b", vfs.ReadOptions{})
	if err != nil {
		t.Fatalf("read surviving link after original removed: %v", err)
	}
	if string(data) != "shared" {
		t.Fatalf("expected content to survive removal of original link, got %q", data)
	}
}

func TestLinkDirectoryFailsEPERM(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	mustMkdir(t, fs, "/d")

	err := fs.Link(ctx, "/d", "/d2")
	if code, ok := vfserrors.CodeOf(err); !ok || code != vfserrors.EPERM {
		t.Fatalf("expected EPERM, got %v", err)
	}
}

func TestRealpathResolvesSymlinkChain(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	mustWrite(t, fs, "/real", []byte("x"))
	if err := fs.Symlink(ctx, "/real", "/mid"); err != nil {
		t.Fatalf("symlink mid: %v", err)
	}
	if err := fs.Symlink(ctx, "/mid", "/top"); err != nil {
		t.Fatalf("symlink top: %v", err)
	}

	resolved, err := fs.Realpath(ctx, "/top")
	if err != nil {
		t.Fatalf("realpath: %v", err)
	}
	if resolved != "/real" {
		t.Fatalf("expected %q, got %q", "/real", resolved)
	}
}
