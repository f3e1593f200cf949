package mount_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs"
	aferobackend "github.com/jmgilman/go/vfs/backend/afero"
	"github.com/jmgilman/go/vfs/backend/billy"
	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/provider/mount"
	"github.com/jmgilman/go/vfs/provider/native"
	"github.com/jmgilman/go/vfs/providertest"
)

func mounted(backend func() core.FS, root string, opts ...mount.Option) providertest.Factory {
	return func(t *testing.T) providertest.Target {
		nat, err := native.New(native.WithRoot(t.TempDir()))
		require.NoError(t, err)
		fsys, err := vfs.New(vfs.WithNative(nat))
		require.NoError(t, err)
		t.Cleanup(fsys.Shutdown)

		p, err := mount.New(backend(), opts...)
		require.NoError(t, err)
		_, err = fsys.Register(p)
		require.NoError(t, err)
		return providertest.Target{FS: fsys, Provider: p, Root: root}
	}
}

func TestConformance_MemoryMountPoint(t *testing.T) {
	config := providertest.DefaultConfig()
	// memfs keeps no settable modification time.
	config.SkipTests = []string{"Files/Utime"}

	providertest.TestSuiteWithConfig(t, mounted(func() core.FS {
		return billy.NewMemory()
	}, "/mnt", mount.WithMountPoint("/mnt")), config)
}

func TestConformance_AferoVolume(t *testing.T) {
	providertest.TestSuite(t, mounted(func() core.FS {
		return aferobackend.Wrap(afero.NewMemMapFs(), core.FSTypeMemory)
	}, "mem:/", mount.WithVolume("mem:/")))
}

func TestConformance_LocalMountPoint(t *testing.T) {
	providertest.TestSuite(t, mounted(func() core.FS {
		return billy.NewLocal(t.TempDir())
	}, "/d/v", mount.WithMountPoint("/d/v")))
}
