//go:build !unix

package native

import (
	"io/fs"
	"os"

	"github.com/jmgilman/go/vfs/core"
)

// access approximates access(2) from the permission bits of the owner.
func access(host string, mode core.AccessMode) error {
	info, err := os.Stat(host)
	if err != nil {
		return err
	}
	perm := info.Mode().Perm()
	if mode&core.AccessRead != 0 && perm&0o400 == 0 {
		return fs.ErrPermission
	}
	if mode&core.AccessWrite != 0 && perm&0o200 == 0 {
		return fs.ErrPermission
	}
	if mode&core.AccessExecute != 0 && !info.IsDir() && perm&0o100 == 0 {
		return fs.ErrPermission
	}
	return nil
}
