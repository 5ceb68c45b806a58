package vfs

import (
	"errors"
	"fmt"
)

// Code is the symbolic error kind a consuming git library branches on.
// The numeric values mirror the POSIX errno constants named in spec.md
// §6.4; they are not used for arithmetic, only identity.
type Code string

const (
	ENOENT    Code = "ENOENT"
	EISDIR    Code = "EISDIR"
	ENOTDIR   Code = "ENOTDIR"
	EEXIST    Code = "EEXIST"
	EPERM     Code = "EPERM"
	ENOTEMPTY Code = "ENOTEMPTY"
)

var errno = map[Code]int{
	ENOENT:    -2,
	EPERM:     -1,
	ENOTDIR:   -20,
	EISDIR:    -21,
	ENOTEMPTY: -39,
	EEXIST:    -17,
}

var text = map[Code]string{
	ENOENT:    "no such file or directory",
	EISDIR:    "illegal operation on a directory",
	ENOTDIR:   "not a directory",
	EEXIST:    "file already exists",
	EPERM:     "operation not permitted",
	ENOTEMPTY: "directory not empty",
}

// Error is the tagged error value every Filesystem operation raises for
// a POSIX-shaped failure. Code is the published contract callers branch
// on; Path is the original, non-normalized input path.
type Error struct {
	Code  Code
	Errno int
	Op    string
	Path  string
}

// newError builds an Error for the given code, operation, and original
// path, with the errno and message text fixed by the code.
func newError(code Code, op, path string) *Error {
	return &Error{
		Code:  code,
		Errno: errno[code],
		Op:    op,
		Path:  path,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s, %s '%s'", e.Code, text[e.Code], e.Op, e.Path)
}

// ErrNoEnt returns an ENOENT Error for the given operation and path.
func ErrNoEnt(op, path string) error { return newError(ENOENT, op, path) }

// ErrIsDir returns an EISDIR Error for the given operation and path.
func ErrIsDir(op, path string) error { return newError(EISDIR, op, path) }

// ErrNotDir returns an ENOTDIR Error for the given operation and path.
func ErrNotDir(op, path string) error { return newError(ENOTDIR, op, path) }

// ErrExist returns an EEXIST Error for the given operation and path.
func ErrExist(op, path string) error { return newError(EEXIST, op, path) }

// ErrPerm returns an EPERM Error for the given operation and path.
func ErrPerm(op, path string) error { return newError(EPERM, op, path) }

// ErrNotEmpty returns an ENOTEMPTY Error for the given operation and path.
func ErrNotEmpty(op, path string) error { return newError(ENOTEMPTY, op, path) }

// CodeOf returns the Code of err if err is (or wraps) a *Error, and
// false otherwise.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
