package native

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
)

func newRooted(t *testing.T, opts ...Option) (*Provider, string) {
	t.Helper()
	root := t.TempDir()
	p, err := New(append([]Option{WithRoot(root)}, opts...)...)
	require.NoError(t, err)
	return p, p.Root()
}

func TestNew_InvalidRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := New(WithRoot(file))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

	_, err = New(WithRoot(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestClaimPath(t *testing.T) {
	p, _ := newRooted(t)

	_, ok := p.ClaimPath("")
	assert.False(t, ok)
	_, ok = p.ClaimPath("/anything")
	assert.True(t, ok)
	_, ok = p.ClaimPath("mem:/x")
	assert.True(t, ok)

	assert.Equal(t, Name, p.Name())
	assert.Equal(t, []string{"/"}, p.Volumes())
	assert.Equal(t, "/", p.Separator())
	assert.True(t, core.Supports(p, core.VerbLoad))
	assert.True(t, core.Supports(p, core.VerbCreateTemp))
}

func TestPathType(t *testing.T) {
	unix, _ := newRooted(t)
	win, _ := newRooted(t, WithSyntax(SyntaxWindows))

	tests := []struct {
		name     string
		p        *Provider
		path     string
		wantType core.PathType
		wantRoot int
	}{
		{name: "unix absolute", p: unix, path: "/a/b", wantType: core.PathAbsolute, wantRoot: 1},
		{name: "unix relative", p: unix, path: "a/b", wantType: core.PathRelative, wantRoot: 0},
		{name: "windows drive", p: win, path: "C:/x", wantType: core.PathAbsolute, wantRoot: 3},
		{name: "windows drive relative", p: win, path: "C:x", wantType: core.PathVolumeRelative, wantRoot: 2},
		{name: "windows volume relative", p: win, path: "/x", wantType: core.PathVolumeRelative, wantRoot: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, root := tt.p.PathType(tt.path)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantRoot, root)
		})
	}
}

func TestHostPath(t *testing.T) {
	p, root := newRooted(t)

	host, err := p.HostPath("/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "b"), host)

	host, err = p.HostPath("/")
	require.NoError(t, err)
	assert.Equal(t, root, host)

	back, err := p.vfsPath(filepath.Join(root, "a"))
	require.NoError(t, err)
	assert.Equal(t, "/a", back)

	_, err = p.vfsPath(filepath.Dir(root))
	assert.Error(t, err)
}

func TestCanonicalize(t *testing.T) {
	p, _ := newRooted(t)
	require.NoError(t, p.Backend().MkdirAll("a/b", 0o755))
	require.NoError(t, p.Backend().WriteFile("a/b/f", []byte("x"), 0o644))
	require.NoError(t, p.Link("/abs", "/a", core.LinkSymbolic))
	require.NoError(t, p.fs.Symlink("a/b", "rel"))

	tests := []struct {
		name      string
		path      string
		start     int
		want      string
		wantFinal int
	}{
		{name: "no links", path: "/a/b/f", want: "/a/b/f", wantFinal: 6},
		{name: "absolute link", path: "/abs/b/f", want: "/a/b/f", wantFinal: 6},
		{name: "relative link", path: "/rel/f", want: "/a/b/f", wantFinal: 6},
		{name: "final link kept", path: "/abs", want: "/abs", wantFinal: 4},
		{name: "final relative link kept", path: "/rel", want: "/rel", wantFinal: 4},
		{name: "final component below a link", path: "/abs/b", want: "/a/b", wantFinal: 4},
		{name: "missing tail", path: "/abs/b/nope/x", want: "/a/b/nope/x", wantFinal: 4},
		{name: "missing head", path: "/nope/x", want: "/nope/x", wantFinal: 1},
		{name: "root", path: "/", want: "/", wantFinal: 1},
		{name: "prefix already final", path: "/abs/b", start: 4, want: "/abs/b", wantFinal: 6},
		{name: "foreign syntax", path: "mem:/x", start: 0, want: "mem:/x", wantFinal: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, final := p.Canonicalize(tt.path, tt.start)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFinal, final)

			if tt.start == 0 {
				again, _ := p.Canonicalize(got, 0)
				assert.Equal(t, got, again)
			}
		})
	}
}

func TestCanonicalize_LinkLoop(t *testing.T) {
	p, _ := newRooted(t)
	require.NoError(t, p.fs.Symlink("/loop2", "loop1"))
	require.NoError(t, p.fs.Symlink("/loop1", "loop2"))

	got, final := p.Canonicalize("/loop1/x", 0)
	assert.True(t, strings.HasPrefix(got, "/loop"))
	assert.Equal(t, 1, final)
}

func TestCwd(t *testing.T) {
	p, _ := newRooted(t)

	wd, err := p.Getwd()
	require.NoError(t, err)
	assert.Equal(t, "/", wd)

	require.NoError(t, p.Mkdir("/d", 0o755))
	require.NoError(t, p.Backend().WriteFile("file", nil, 0o644))

	require.NoError(t, p.Chdir("/d"))
	wd, err = p.Getwd()
	require.NoError(t, err)
	assert.Equal(t, "/d", wd)

	err = p.Chdir("/missing")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	err = p.Chdir("/file")
	assert.True(t, errors.Is(err, core.ErrNotDir))

	_, err = p.RemoveDir("/d", false)
	require.NoError(t, err)
	_, err = p.Getwd()
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestAccess(t *testing.T) {
	p, _ := newRooted(t)
	require.NoError(t, p.Backend().WriteFile("f", nil, 0o644))

	assert.NoError(t, p.Access("/f", core.AccessExists))
	assert.NoError(t, p.Access("/f", core.AccessRead))
	assert.NoError(t, p.Access("/", core.AccessExecute))

	err := p.Access("/missing", core.AccessExists)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLink_Hard(t *testing.T) {
	p, _ := newRooted(t)
	require.NoError(t, p.Backend().WriteFile("a", []byte("shared"), 0o644))

	require.NoError(t, p.Link("/b", "/a", core.LinkHard))

	data, err := p.Backend().ReadFile("b")
	require.NoError(t, err)
	assert.Equal(t, "shared", string(data))
}

func TestCreateTemp(t *testing.T) {
	p, root := newRooted(t)

	f, vpath, err := p.CreateTemp("load")
	require.NoError(t, err)
	_, err = io.WriteString(f, "payload")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.True(t, strings.HasPrefix(vpath, "/tmp/load"), vpath)
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(vpath)))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCreateTemp_CustomDir(t *testing.T) {
	p, _ := newRooted(t, WithTempDir("/scratch"))

	f, vpath, err := p.CreateTemp("x")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, strings.HasPrefix(vpath, "/scratch/x"), vpath)
}

func TestLoad(t *testing.T) {
	var gotHost string
	var gotSymbols []string
	loader := func(host string, symbols []string) ([]any, func() error, error) {
		gotHost = host
		gotSymbols = symbols
		return []any{"init"}, func() error { return nil }, nil
	}
	p, root := newRooted(t, WithLoader(loader))

	handles, unload, err := p.Load("/lib/ext.so", []string{"Init"})
	require.NoError(t, err)
	require.NotNil(t, unload)
	assert.Equal(t, []any{"init"}, handles)
	assert.Equal(t, filepath.Join(root, "lib", "ext.so"), gotHost)
	assert.Equal(t, []string{"Init"}, gotSymbols)
}

func TestLoad_DefaultRejectsNonPlugin(t *testing.T) {
	p, _ := newRooted(t)
	require.NoError(t, p.Backend().WriteFile("notaplugin.so", []byte("text"), 0o644))

	_, _, err := p.Load("/notaplugin.so", []string{"Init"})
	assert.Error(t, err)
}

func TestLoad_Disabled(t *testing.T) {
	p, _ := newRooted(t, WithLoader(nil))

	_, _, err := p.Load("/x.so", nil)
	assert.True(t, errors.Is(err, core.ErrUnsupported))
}
