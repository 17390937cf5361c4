package fuseadapter

import (
	"context"
	"fmt"

	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/rs/zerolog"

	"github.com/durablefs/vfs/pkg/vfs"
)

// Options configures a real-OS FUSE mount.
type Options struct {
	Debug      bool
	AllowOther bool
	Logger     zerolog.Logger
}

// Mount exposes fsys at mountpoint through the kernel's VFS layer. The
// returned server must be unmounted (server.Unmount or a SIGINT/SIGTERM
// handler calling it) before the process exits.
func Mount(mountpoint string, fsys *vfs.FS, opts Options) (*fuse.Server, error) {
	root := newNode(fsys, "/", opts.Logger)

	mountOpts := fuse.MountOptions{
		Name:       "vfsd",
		FsName:     "vfs",
		Debug:      opts.Debug,
		AllowOther: opts.AllowOther,
	}

	server, err := gofs.Mount(mountpoint, root, &gofs.Options{MountOptions: mountOpts})
	if err != nil {
		return nil, fmt.Errorf("fuseadapter: mount failed: %w", err)
	}
	return server, nil
}

// Unmount is a convenience wrapper kept separate from (*fuse.Server).Unmount
// so callers that only import this package, not go-fuse directly, have a
// symmetrical Mount/Unmount pair.
func Unmount(ctx context.Context, server *fuse.Server) error {
	return server.Unmount()
}
