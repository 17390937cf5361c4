package fuseadapter

import (
	"errors"
	"syscall"
	"testing"

	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

func TestToErrnoMapsKnownCodes(t *testing.T) {
	cases := map[vfserrors.Code]syscall.Errno{
		vfserrors.ENOENT:    syscall.ENOENT,
		vfserrors.EEXIST:    syscall.EEXIST,
		vfserrors.EISDIR:    syscall.EISDIR,
		vfserrors.ENOTDIR:   syscall.ENOTDIR,
		vfserrors.ENOTEMPTY: syscall.ENOTEMPTY,
		vfserrors.EINVAL:    syscall.EINVAL,
		vfserrors.EBADF:     syscall.EBADF,
		vfserrors.ELOOP:     syscall.ELOOP,
		vfserrors.EACCES:    syscall.EACCES,
		vfserrors.EPERM:     syscall.EPERM,
		vfserrors.ENOSPC:    syscall.ENOSPC,
		vfserrors.EXDEV:     syscall.EXDEV,
		vfserrors.EBUSY:     syscall.EBUSY,
	}
	for code, want := range cases {
		err := vfserrors.New("op", "/p", code)
		if got := toErrno(err); got != want {
			t.Errorf("%s: got %v, want %v", code, got, want)
		}
	}
}

func TestToErrnoNilIsZero(t *testing.T) {
	if got := toErrno(nil); got != 0 {
		t.Fatalf("expected 0 for nil error, got %v", got)
	}
}

func TestToErrnoUnrecognizedErrorIsEIO(t *testing.T) {
	if got := toErrno(errors.New("boom")); got != syscall.EIO {
		t.Fatalf("expected EIO for plain error, got %v", got)
	}
}
