package vfs

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
)

// ContextOffendingPath is the error context key holding the path inside a
// tree that made RemoveDirectory or CopyDirectory fail.
const ContextOffendingPath = "offending_path"

// OffendingPath returns the path recorded by a failed tree operation.
func OffendingPath(err error) (string, bool) {
	v, ok := errors.ContextValue(err, ContextOffendingPath)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IsNotFound reports whether err means no provider could serve the path.
func IsNotFound(err error) bool {
	return errors.GetCode(err) == errors.CodeNotFound
}

// IsCrossDevice reports whether err is a cross-provider rejection.
func IsCrossDevice(err error) bool {
	return errors.GetCode(err) == errors.CodeCrossDevice
}

// errNoOwner reports that no provider claims path.
func errNoOwner(op, path string) error {
	return errors.WrapWithContext(
		&fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist},
		errors.CodeNotFound,
		"no provider claims path",
		map[string]interface{}{"path": path},
	)
}

// errUnsupported reports that the owner of path lacks the capability for op.
func errUnsupported(op, path string, owner core.Provider) error {
	return errors.WrapWithContext(
		&fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist},
		errors.CodeNotFound,
		fmt.Sprintf("provider %q does not support %s", owner.Name(), op),
		map[string]interface{}{"path": path, "provider": owner.Name()},
	)
}

// errCrossDevice reports a binary operation spanning two providers.
func errCrossDevice(op, src, dst string, from, to core.Provider) error {
	return errors.WrapWithContext(
		&os.LinkError{Op: op, Old: src, New: dst, Err: syscall.EXDEV},
		errors.CodeCrossDevice,
		fmt.Sprintf("%s from %q to %q provider", op, from.Name(), to.Name()),
		map[string]interface{}{
			"source":               src,
			"destination":          dst,
			"source_provider":      from.Name(),
			"destination_provider": to.Name(),
		},
	)
}

// withOffending attaches the offending path of a tree operation.
func withOffending(err error, offending string) error {
	if err == nil || offending == "" {
		return err
	}
	return errors.WithContext(err, ContextOffendingPath, offending)
}

var errClosedPath = errors.Wrap(fs.ErrClosed, errors.CodeInvalidInput, "path is closed")
