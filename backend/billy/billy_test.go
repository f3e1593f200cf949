package billy

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs/core"
)

func TestType(t *testing.T) {
	assert.Equal(t, core.FSTypeMemory, NewMemory().Type())
	assert.Equal(t, core.FSTypeLocal, NewLocal(t.TempDir()).Type())
	assert.Equal(t, "/", NewLocal("").Root())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "."},
		{in: ".", want: "."},
		{in: "/", want: "."},
		{in: "a/b", want: "a/b"},
		{in: "/a/./b/", want: "a/b"},
		{in: `a\b`, want: "a/b"},
		{in: "../../a", want: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in))
		})
	}
}

func TestReadWrite(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.MkdirAll("dir/sub", 0o755))
			require.NoError(t, b.WriteFile("dir/sub/x.txt", []byte("hello"), 0o644))

			data, err := b.ReadFile("/dir/sub/x.txt")
			require.NoError(t, err)
			assert.Equal(t, "hello", string(data))

			ok, err := b.Exists("dir/sub/x.txt")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = b.Exists("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			f, err := b.OpenFile("dir/sub/x.txt", os.O_WRONLY|os.O_APPEND, 0)
			require.NoError(t, err)
			_, err = f.Write([]byte(" world"))
			require.NoError(t, err)
			require.NoError(t, f.Close())

			rf, err := b.Open("dir/sub/x.txt")
			require.NoError(t, err)
			got, err := io.ReadAll(rf)
			require.NoError(t, err)
			assert.Equal(t, "hello world", string(got))
			info, err := rf.Stat()
			require.NoError(t, err)
			assert.Equal(t, int64(11), info.Size())
			require.NoError(t, rf.Close())
		})
	}
}

func TestMkdir(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Mkdir("a", 0o755))
			assert.ErrorIs(t, b.Mkdir("a", 0o755), fs.ErrExist)
			assert.ErrorIs(t, b.Mkdir("missing/b", 0o755), fs.ErrNotExist)

			require.NoError(t, b.WriteFile("f", nil, 0o644))
			assert.ErrorIs(t, b.Mkdir("f/x", 0o755), core.ErrNotDir)
		})
	}
}

func TestRemove(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.MkdirAll("d/e", 0o755))
			require.NoError(t, b.WriteFile("d/e/f", []byte("x"), 0o644))

			assert.ErrorIs(t, b.Remove("d"), core.ErrDirNotEmpty)
			require.NoError(t, b.RemoveAll("d"))

			ok, err := b.Exists("d")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.NoError(t, b.RemoveAll("d"))
		})
	}
}

func TestReadDirAndWalk(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.MkdirAll("w/b", 0o755))
			require.NoError(t, b.WriteFile("w/c.txt", nil, 0o644))
			require.NoError(t, b.WriteFile("w/a.txt", nil, 0o644))
			require.NoError(t, b.WriteFile("w/b/d.txt", nil, 0o644))

			entries, err := b.ReadDir("w")
			require.NoError(t, err)
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			assert.Equal(t, []string{"a.txt", "b", "c.txt"}, names)

			var walked []string
			err = b.Walk("w", func(p string, _ fs.DirEntry, err error) error {
				require.NoError(t, err)
				walked = append(walked, p)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"w", "w/a.txt", "w/b", "w/b/d.txt", "w/c.txt"}, walked)

			walked = nil
			err = b.Walk("w", func(p string, d fs.DirEntry, _ error) error {
				walked = append(walked, p)
				if d.IsDir() && p == "w/b" {
					return fs.SkipDir
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"w", "w/a.txt", "w/b", "w/c.txt"}, walked)
		})
	}
}

func TestRenameAndChroot(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.MkdirAll("r", 0o755))
			require.NoError(t, b.WriteFile("r/old", []byte("v"), 0o644))
			require.NoError(t, b.Rename("r/old", "r/new"))

			sub, err := b.Chroot("r")
			require.NoError(t, err)
			data, err := sub.ReadFile("new")
			require.NoError(t, err)
			assert.Equal(t, "v", string(data))
			assert.Equal(t, b.Type(), sub.Type())
		})
	}
}

func TestSymlink(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.WriteFile("target", []byte("t"), 0o644))
			require.NoError(t, b.Symlink("target", "link"))

			got, err := b.Readlink("link")
			require.NoError(t, err)
			assert.Equal(t, "target", got)

			info, err := b.Lstat("link")
			require.NoError(t, err)
			assert.NotZero(t, info.Mode()&fs.ModeSymlink)
		})
	}
}

func TestTemp(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.MkdirAll("tmp", 0o755))

			f, err := b.TempFile("tmp", "load")
			require.NoError(t, err)
			_, err = f.Write([]byte("abc"))
			require.NoError(t, err)
			require.NoError(t, f.Close())

			data, err := b.ReadFile(f.Name())
			require.NoError(t, err)
			assert.Equal(t, "abc", string(data))

			dir, err := b.TempDir("tmp", "work")
			require.NoError(t, err)
			info, err := b.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestChtimes_Local(t *testing.T) {
	root := t.TempDir()
	b := NewLocal(root)
	require.NoError(t, b.WriteFile("f", nil, 0o644))

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, b.Chtimes("f", mtime, mtime))

	info, err := os.Stat(filepath.Join(root, "f"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func backends(t *testing.T) map[string]*FS {
	t.Helper()
	return map[string]*FS{
		"memory": NewMemory(),
		"local":  NewLocal(t.TempDir()),
	}
}
