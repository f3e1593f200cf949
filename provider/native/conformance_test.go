package native_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs"
	"github.com/jmgilman/go/vfs/provider/native"
	"github.com/jmgilman/go/vfs/providertest"
)

func TestConformance(t *testing.T) {
	providertest.TestSuite(t, func(t *testing.T) providertest.Target {
		p, err := native.New(native.WithRoot(t.TempDir()))
		require.NoError(t, err)
		fsys, err := vfs.New(vfs.WithNative(p))
		require.NoError(t, err)
		t.Cleanup(fsys.Shutdown)
		return providertest.Target{FS: fsys, Provider: p, Root: "/"}
	})
}
