package vfs

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs/backend/billy"
	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/provider/mount"
	"github.com/jmgilman/go/vfs/provider/native"
)

// newTestFS creates an FS whose native provider is rooted in a temporary
// directory, so nothing touches the real filesystem or process cwd.
func newTestFS(t *testing.T, nativeOpts []native.Option, opts ...Option) (*FS, *native.Provider) {
	t.Helper()
	nat, err := native.New(append([]native.Option{native.WithRoot(t.TempDir())}, nativeOpts...)...)
	require.NoError(t, err)

	fsys, err := New(append([]Option{WithNative(nat)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(fsys.Shutdown)
	return fsys, nat
}

func newWorker(t *testing.T, fsys *FS) *Worker {
	t.Helper()
	w := fsys.NewWorker()
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func newPath(t *testing.T, s string) *Path {
	t.Helper()
	p := NewPath(s)
	t.Cleanup(p.Close)
	return p
}

func memVolume(t *testing.T, prefix string) *mount.Provider {
	t.Helper()
	p, err := mount.New(billy.NewMemory(), mount.WithVolume(prefix))
	require.NoError(t, err)
	return p
}

func memMount(t *testing.T, point string) *mount.Provider {
	t.Helper()
	p, err := mount.New(billy.NewMemory(), mount.WithMountPoint(point))
	require.NoError(t, err)
	return p
}

// stubInfo is a minimal fs.FileInfo.
type stubInfo struct {
	name string
	dir  bool
}

func (i stubInfo) Name() string { return i.name }
func (i stubInfo) Size() int64  { return 0 }
func (i stubInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
func (i stubInfo) ModTime() time.Time { return time.Time{} }
func (i stubInfo) IsDir() bool        { return i.dir }
func (i stubInfo) Sys() any           { return nil }

// stubProvider claims everything under its volume and supports nothing
// else. Tests embed it to add single capabilities.
type stubProvider struct {
	name   string
	volume string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Volumes() []string { return []string{s.volume} }

func (s *stubProvider) ClaimPath(p string) (any, bool) {
	return nil, strings.HasPrefix(p, s.volume)
}

// statProvider reports every path as a directory but has no Lstat.
type statProvider struct {
	stubProvider
}

func (s *statProvider) Stat(p string) (fs.FileInfo, error) {
	return stubInfo{name: p, dir: true}, nil
}

// cwdProvider reports a configurable current directory.
type cwdProvider struct {
	stubProvider
	wd  string
	err error
}

func (c *cwdProvider) Getwd() (string, error) {
	return c.wd, c.err
}

// treeProvider fails tree operations at a fixed offending path.
type treeProvider struct {
	stubProvider
	offending string
	err       error
}

func (t *treeProvider) RemoveDir(string, bool) (string, error) {
	return t.offending, t.err
}

func (t *treeProvider) CopyDir(string, string) (string, error) {
	return t.offending, t.err
}

// loaderProvider loads files itself.
type loaderProvider struct {
	stubProvider
	unloaded bool
}

func (l *loaderProvider) Load(p string, symbols []string) ([]any, func() error, error) {
	handles := make([]any, len(symbols))
	for i, s := range symbols {
		handles[i] = p + "#" + s
	}
	return handles, func() error {
		l.unloaded = true
		return nil
	}, nil
}

// repProvider hands out counted representations.
type repProvider struct {
	stubProvider
	live int
}

type rep struct{ path string }

func (r *repProvider) ClaimPath(p string) (any, bool) {
	if !strings.HasPrefix(p, r.volume) {
		return nil, false
	}
	r.live++
	return &rep{path: p}, true
}

func (r *repProvider) CreateRep(p string) (any, error) {
	r.live++
	return &rep{path: p}, nil
}

func (r *repProvider) DupRep(v any) any {
	r.live++
	return &rep{path: v.(*rep).path}
}

func (r *repProvider) FreeRep(any) {
	r.live--
}

func (r *repProvider) RepPath(v any) (string, error) {
	return v.(*rep).path, nil
}

var (
	_ core.Stater     = (*statProvider)(nil)
	_ core.CwdGetter  = (*cwdProvider)(nil)
	_ core.DirRemover = (*treeProvider)(nil)
	_ core.DirCopier  = (*treeProvider)(nil)
	_ core.Loader     = (*loaderProvider)(nil)
	_ core.RepFreer   = (*repProvider)(nil)
)
