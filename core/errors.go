package core

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotExist is re-exported from io/fs.
	ErrNotExist = fs.ErrNotExist

	// ErrExist is re-exported from io/fs.
	ErrExist = fs.ErrExist

	// ErrPermission is re-exported from io/fs.
	ErrPermission = fs.ErrPermission

	// ErrClosed is re-exported from io/fs.
	ErrClosed = fs.ErrClosed

	// ErrUnsupported is returned by a backend when an operation cannot be
	// carried out, for example symlinks on object storage.
	ErrUnsupported = errors.New("operation not supported")

	// ErrNotDir is returned when a directory was required.
	ErrNotDir = errors.New("not a directory")

	// ErrDirNotEmpty is returned when a non-recursive directory removal
	// finds entries.
	ErrDirNotEmpty = errors.New("directory not empty")
)
