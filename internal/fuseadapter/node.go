// Package fuseadapter bridges pkg/vfs.FS to a real OS mountpoint via
// hanwen/go-fuse's high-level node API. Mounting is optional: everything
// in pkg/vfs works standalone without this package, which exists only to
// expose it through the kernel's VFS layer.
package fuseadapter

import (
	"context"
	"syscall"

	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/rs/zerolog"

	"github.com/durablefs/vfs/internal/handle"
	"github.com/durablefs/vfs/internal/metadata"
	"github.com/durablefs/vfs/pkg/pathutil"
	"github.com/durablefs/vfs/pkg/vfs"
)

// Node is a single FUSE inode backed by a path into a vfs.FS. One Node
// type covers every entry kind, since the underlying filesystem already
// distinguishes file/dir/symlink at the path-resolution layer; Node just
// forwards into it rather than branching on type itself.
type Node struct {
	gofs.Inode
	fs   *vfs.FS
	path string
	log  zerolog.Logger

	fd int // 0 means not open
}

func newNode(fs *vfs.FS, path string, log zerolog.Logger) *Node {
	return &Node{fs: fs, path: path, log: log}
}

var (
	_ = (gofs.NodeLookuper)((*Node)(nil))
	_ = (gofs.NodeReaddirer)((*Node)(nil))
	_ = (gofs.NodeGetattrer)((*Node)(nil))
	_ = (gofs.NodeSetattrer)((*Node)(nil))
	_ = (gofs.NodeOpener)((*Node)(nil))
	_ = (gofs.NodeReader)((*Node)(nil))
	_ = (gofs.NodeWriter)((*Node)(nil))
	_ = (gofs.NodeFlusher)((*Node)(nil))
	_ = (gofs.NodeFsyncer)((*Node)(nil))
	_ = (gofs.NodeCreater)((*Node)(nil))
	_ = (gofs.NodeMkdirer)((*Node)(nil))
	_ = (gofs.NodeRmdirer)((*Node)(nil))
	_ = (gofs.NodeUnlinker)((*Node)(nil))
	_ = (gofs.NodeRenamer)((*Node)(nil))
	_ = (gofs.NodeSymlinker)((*Node)(nil))
	_ = (gofs.NodeReadlinker)((*Node)(nil))
)

func attrFromInfo(out *fuse.Attr, info vfs.FileInfo) {
	out.Mode = info.Mode
	switch info.Type {
	case metadata.TypeDirectory:
		out.Mode |= syscall.S_IFDIR
	case metadata.TypeSymlink:
		out.Mode |= syscall.S_IFLNK
	default:
		out.Mode |= syscall.S_IFREG
	}
	out.Size = uint64(info.Size)
	out.Uid = info.UID
	out.Gid = info.GID
	out.Nlink = uint32(info.NLink)
	if out.Nlink == 0 {
		out.Nlink = 1
	}
	out.Mtime = uint64(info.MTime / 1000)
	out.Atime = uint64(info.ATime / 1000)
	out.Ctime = uint64(info.CTime / 1000)
}

func stableAttrFor(info vfs.FileInfo) gofs.StableAttr {
	mode := fuse.S_IFREG
	switch info.Type {
	case metadata.TypeDirectory:
		mode = fuse.S_IFDIR
	case metadata.TypeSymlink:
		mode = fuse.S_IFLNK
	}
	return gofs.StableAttr{Mode: uint32(mode)}
}

// Lookup resolves name within the directory this Node represents.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	childPath := pathutil.Join(n.path, name)
	info, err := n.fs.Lstat(ctx, childPath)
	if err != nil {
		return nil, toErrno(err)
	}
	attrFromInfo(&out.Attr, info)
	child := newNode(n.fs, childPath, n.log)
	return n.NewInode(ctx, child, stableAttrFor(info)), 0
}

// Readdir lists this directory's children.
func (n *Node) Readdir(ctx context.Context) (gofs.DirStream, syscall.Errno) {
	res, err := n.fs.Readdir(ctx, n.path, vfs.ReaddirOptions{})
	if err != nil {
		return nil, toErrno(err)
	}
	entries := make([]fuse.DirEntry, 0, len(res.Entries))
	for _, e := range res.Entries {
		mode := uint32(fuse.S_IFREG)
		switch e.Type {
		case metadata.TypeDirectory:
			mode = fuse.S_IFDIR
		case metadata.TypeSymlink:
			mode = fuse.S_IFLNK
		}
		entries = append(entries, fuse.DirEntry{Name: e.Name, Mode: mode})
	}
	return gofs.NewListDirStream(entries), 0
}

// Getattr reports this node's attributes.
func (n *Node) Getattr(ctx context.Context, f gofs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, err := n.fs.Lstat(ctx, n.path)
	if err != nil {
		return toErrno(err)
	}
	attrFromInfo(&out.Attr, info)
	return 0
}

// Setattr applies mode/uid/gid/size/time changes requested by the kernel.
func (n *Node) Setattr(ctx context.Context, f gofs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if mode, ok := in.GetMode(); ok {
		if err := n.fs.Chmod(ctx, n.path, mode); err != nil {
			return toErrno(err)
		}
	}
	if uid, ok := in.GetUID(); ok {
		gid, hasGid := in.GetGID()
		if !hasGid {
			info, err := n.fs.Lstat(ctx, n.path)
			if err != nil {
				return toErrno(err)
			}
			gid = info.GID
		}
		if err := n.fs.Chown(ctx, n.path, uid, gid); err != nil {
			return toErrno(err)
		}
	}
	if size, ok := in.GetSize(); ok {
		if err := n.fs.Truncate(ctx, n.path, int64(size)); err != nil {
			return toErrno(err)
		}
	}
	if mtime, ok := in.GetMTime(); ok {
		atime, ok := in.GetATime()
		if !ok {
			atime = mtime
		}
		opts := vfs.UtimesOptions{ATime: atime.UnixMilli(), MTime: mtime.UnixMilli()}
		if err := n.fs.Utimes(ctx, n.path, opts); err != nil {
			return toErrno(err)
		}
	}
	return n.Getattr(ctx, f, out)
}

// Open opens this node's backing entry. The returned fd is cached on the
// Node rather than boxed in a separate FileHandle, matching the single
// open-per-node assumption the host's single-writer contract already
// makes.
func (n *Node) Open(ctx context.Context, flags uint32) (gofs.FileHandle, uint32, syscall.Errno) {
	flag := flagFromFUSE(flags)
	fd, err := n.fs.Open(ctx, n.path, flag, 0)
	if err != nil {
		return nil, 0, toErrno(err)
	}
	n.fd = fd
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func flagFromFUSE(flags uint32) handle.Flag {
	switch flags & syscall.O_ACCMODE {
	case syscall.O_WRONLY:
		if flags&syscall.O_APPEND != 0 {
			return handle.FlagAppend
		}
		return handle.FlagWrite
	case syscall.O_RDWR:
		if flags&syscall.O_APPEND != 0 {
			return handle.FlagAppendRead
		}
		if flags&syscall.O_TRUNC != 0 {
			return handle.FlagWriteRead
		}
		return handle.FlagReadWrite
	default:
		return handle.FlagRead
	}
}

// Read reads from the node's cached fd at the given offset.
func (n *Node) Read(ctx context.Context, f gofs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	pos := off
	read, err := n.fs.ReadFD(ctx, n.fd, dest, 0, len(dest), &pos)
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(dest[:read]), 0
}

// Write writes to the node's cached fd at the given offset.
func (n *Node) Write(ctx context.Context, f gofs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	pos := off
	written, err := n.fs.WriteFD(ctx, n.fd, data, &pos)
	if err != nil {
		return 0, toErrno(err)
	}
	return uint32(written), 0
}

// Flush syncs the node's buffered content to durable storage.
func (n *Node) Flush(ctx context.Context, f gofs.FileHandle) syscall.Errno {
	if n.fd == 0 {
		return 0
	}
	if err := n.fs.SyncFD(ctx, n.fd); err != nil {
		return toErrno(err)
	}
	return 0
}

// Fsync is handled the same as Flush; the host has no separate durability
// tier between the two.
func (n *Node) Fsync(ctx context.Context, f gofs.FileHandle, flags uint32) syscall.Errno {
	return n.Flush(ctx, f)
}

// Create makes a new file in this directory and opens it.
func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*gofs.Inode, gofs.FileHandle, uint32, syscall.Errno) {
	childPath := pathutil.Join(n.path, name)
	flag := flagFromFUSE(flags)
	if !flag.CreatesIfAbsent() {
		flag = handle.FlagWrite
	}
	fd, err := n.fs.Open(ctx, childPath, flag, mode)
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}
	info, err := n.fs.Lstat(ctx, childPath)
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}
	attrFromInfo(&out.Attr, info)
	child := newNode(n.fs, childPath, n.log)
	child.fd = fd
	return n.NewInode(ctx, child, stableAttrFor(info)), nil, fuse.FOPEN_DIRECT_IO, 0
}

// Mkdir creates a subdirectory.
func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	childPath := pathutil.Join(n.path, name)
	if err := n.fs.Mkdir(ctx, childPath, vfs.MkdirOptions{Mode: mode}); err != nil {
		return nil, toErrno(err)
	}
	info, err := n.fs.Lstat(ctx, childPath)
	if err != nil {
		return nil, toErrno(err)
	}
	attrFromInfo(&out.Attr, info)
	child := newNode(n.fs, childPath, n.log)
	return n.NewInode(ctx, child, stableAttrFor(info)), 0
}

// Rmdir removes an empty subdirectory.
func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	childPath := pathutil.Join(n.path, name)
	if err := n.fs.Rmdir(ctx, childPath, vfs.RmOptions{}); err != nil {
		return toErrno(err)
	}
	return 0
}

// Unlink removes a file.
func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	childPath := pathutil.Join(n.path, name)
	if err := n.fs.Unlink(ctx, childPath); err != nil {
		return toErrno(err)
	}
	return 0
}

// Rename moves name to newName under newParent.
func (n *Node) Rename(ctx context.Context, name string, newParent gofs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	newParentNode, ok := newParent.(*Node)
	if !ok {
		return syscall.EXDEV
	}
	oldPath := pathutil.Join(n.path, name)
	newPath := pathutil.Join(newParentNode.path, newName)
	if err := n.fs.Rename(ctx, oldPath, newPath); err != nil {
		return toErrno(err)
	}
	return 0
}

// Symlink creates a symbolic link.
func (n *Node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	childPath := pathutil.Join(n.path, name)
	if err := n.fs.Symlink(ctx, target, childPath); err != nil {
		return nil, toErrno(err)
	}
	info, err := n.fs.Lstat(ctx, childPath)
	if err != nil {
		return nil, toErrno(err)
	}
	attrFromInfo(&out.Attr, info)
	child := newNode(n.fs, childPath, n.log)
	return n.NewInode(ctx, child, stableAttrFor(info)), 0
}

// Readlink returns this node's raw link target.
func (n *Node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	target, err := n.fs.Readlink(ctx, n.path)
	if err != nil {
		return nil, toErrno(err)
	}
	return []byte(target), 0
}
