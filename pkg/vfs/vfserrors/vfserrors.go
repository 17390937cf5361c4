// Package vfserrors defines the POSIX-style error taxonomy shared by every
// layer of the virtual filesystem.
package vfserrors

import (
	"errors"
	"fmt"
)

// Code is a POSIX-style error code, mirroring errno names.
type Code string

const (
	ENOENT   Code = "ENOENT"
	EEXIST   Code = "EEXIST"
	EISDIR   Code = "EISDIR"
	ENOTDIR  Code = "ENOTDIR"
	ENOTEMPTY Code = "ENOTEMPTY"
	EINVAL   Code = "EINVAL"
	EBADF    Code = "EBADF"
	ELOOP    Code = "ELOOP"
	EACCES   Code = "EACCES"
	EPERM    Code = "EPERM"
	ENOSPC   Code = "ENOSPC"
	EXDEV    Code = "EXDEV"
	EBUSY    Code = "EBUSY"
)

// Error is a structured filesystem error carrying a POSIX code and the
// path it concerns.
type Error struct {
	Code Code
	Path string
	Op   string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports equality by code: errors.Is(err, vfserrors.New("", "",
// vfserrors.ENOENT)) holds for any *Error in err's chain whose code is
// ENOENT, whatever its Op and Path.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New constructs an *Error.
func New(op, path string, code Code) *Error {
	return &Error{Op: op, Path: path, Code: code}
}

// Wrap constructs an *Error that carries an underlying cause.
func Wrap(op, path string, code Code, err error) *Error {
	return &Error{Op: op, Path: path, Code: code, Err: err}
}

// CodeOf extracts the POSIX code from err if it (or something it wraps) is
// an *Error; the zero Code otherwise.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
