//go:build unix

package native

import (
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/vfs/core"
)

func access(host string, mode core.AccessMode) error {
	return unix.Access(host, uint32(mode))
}
