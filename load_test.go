package vfs

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aferobackend "github.com/jmgilman/go/vfs/backend/afero"
	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
	"github.com/jmgilman/go/vfs/provider/mount"
	"github.com/jmgilman/go/vfs/provider/native"
)

func TestLoadFile_OwnerLoads(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	lp := &loaderProvider{stubProvider: stubProvider{name: "loader", volume: "l:/"}}
	_, err := fsys.Register(lp)
	require.NoError(t, err)
	w := newWorker(t, fsys)

	h, err := w.LoadFile(newPath(t, "l:/lib/../ext"), []string{"Init", "Run"})
	require.NoError(t, err)
	assert.False(t, h.Diverted())
	assert.Equal(t, "l:/ext", h.Path)
	assert.Equal(t, []any{"l:/ext#Init", "l:/ext#Run"}, h.Handles)

	require.NoError(t, w.Unload(h))
	assert.True(t, lp.unloaded)
	require.NoError(t, w.Unload(h), "unloading twice is a no-op")
}

// loadRecord captures what the native loader saw.
type loadRecord struct {
	host          string
	content       string
	modTime       time.Time
	existsAtClose bool
}

func recordingLoader(rec *loadRecord) native.LoadFunc {
	return func(host string, symbols []string) ([]any, func() error, error) {
		data, err := os.ReadFile(host)
		if err != nil {
			return nil, nil, err
		}
		info, err := os.Stat(host)
		if err != nil {
			return nil, nil, err
		}
		rec.host = host
		rec.content = string(data)
		rec.modTime = info.ModTime()

		handles := make([]any, len(symbols))
		for i, s := range symbols {
			handles[i] = s
		}
		return handles, func() error {
			_, err := os.Stat(host)
			rec.existsAtClose = err == nil
			return nil
		}, nil
	}
}

func TestLoadFile_ThroughNativeCopy(t *testing.T) {
	rec := &loadRecord{}
	m := NewMetrics()
	fsys, nat := newTestFS(t, []native.Option{native.WithLoader(recordingLoader(rec))}, WithMetrics(m))

	afs := afero.NewMemMapFs()
	mtime := time.Unix(1_500_000_000, 0)
	require.NoError(t, afero.WriteFile(afs, "/lib.so", []byte("shared object"), 0o755))
	require.NoError(t, afs.Chtimes("/lib.so", mtime, mtime))

	mem, err := mount.New(aferobackend.Wrap(afs, core.FSTypeMemory), mount.WithVolume("mem:/"))
	require.NoError(t, err)
	_, err = fsys.Register(mem)
	require.NoError(t, err)
	w := newWorker(t, fsys)

	h, err := w.LoadFile(newPath(t, "mem:/lib.so"), []string{"Init"})
	require.NoError(t, err)
	assert.True(t, h.Diverted())
	assert.Equal(t, "mem:/lib.so", h.Path)
	assert.Equal(t, []any{"Init"}, h.Handles)
	assert.Equal(t, "shared object", rec.content)
	assert.True(t, rec.modTime.Equal(mtime), "the copy keeps the source modification time")

	host, err := nat.HostPath(h.TempPath)
	require.NoError(t, err)
	assert.Equal(t, host, rec.host)
	assert.Equal(t, int64(1), m.Snapshot().LoadFallbacks)

	require.NoError(t, w.Unload(h))
	assert.True(t, rec.existsAtClose, "the copy outlives the unload callback")
	_, err = os.Stat(host)
	assert.True(t, os.IsNotExist(err), "the copy is removed after unloading")
}

func TestLoadFile_NativeWithoutLoader(t *testing.T) {
	fsys, _ := newTestFS(t, []native.Option{native.WithLoader(nil)})
	w := newWorker(t, fsys)
	writeFile(t, w, "/lib.so", "x")

	_, err := w.LoadFile(newPath(t, "/lib.so"), []string{"Init"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnsupported))
}

func TestLoadFile_MissingSource(t *testing.T) {
	fsys, _ := newTestFS(t, []native.Option{native.WithLoader(recordingLoader(&loadRecord{}))})
	_, err := fsys.Register(memVolume(t, "mem:/"))
	require.NoError(t, err)
	w := newWorker(t, fsys)

	_, err = w.LoadFile(newPath(t, "mem:/missing.so"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
