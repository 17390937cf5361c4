package fuseadapter

import (
	"syscall"

	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// toErrno maps a vfserrors.Code-carrying error to the syscall.Errno the
// FUSE kernel driver expects. An error that doesn't carry one of our codes
// (a storage/transport error, a cancelled context) becomes EIO.
func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	code, ok := vfserrors.CodeOf(err)
	if !ok {
		return syscall.EIO
	}
	switch code {
	case vfserrors.ENOENT:
		return syscall.ENOENT
	case vfserrors.EEXIST:
		return syscall.EEXIST
	case vfserrors.EISDIR:
		return syscall.EISDIR
	case vfserrors.ENOTDIR:
		return syscall.ENOTDIR
	case vfserrors.ENOTEMPTY:
		return syscall.ENOTEMPTY
	case vfserrors.EINVAL:
		return syscall.EINVAL
	case vfserrors.EBADF:
		return syscall.EBADF
	case vfserrors.ELOOP:
		return syscall.ELOOP
	case vfserrors.EACCES:
		return syscall.EACCES
	case vfserrors.EPERM:
		return syscall.EPERM
	case vfserrors.ENOSPC:
		return syscall.ENOSPC
	case vfserrors.EXDEV:
		return syscall.EXDEV
	case vfserrors.EBUSY:
		return syscall.EBUSY
	default:
		return syscall.EIO
	}
}
