package billy

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/jmgilman/go/vfs/core"
)

// FS adapts a billy.Filesystem to core.FS.
type FS struct {
	bfs billy.Filesystem
	typ core.FSType
}

// NewLocal returns disk-backed storage rooted at root. An empty root means
// the filesystem root "/".
func NewLocal(root string) *FS {
	if root == "" {
		root = "/"
	}
	return &FS{bfs: osfs.New(root), typ: core.FSTypeLocal}
}

// NewMemory returns empty in-memory storage.
func NewMemory() *FS {
	return &FS{bfs: memfs.New(), typ: core.FSTypeMemory}
}

// Wrap adapts an existing billy.Filesystem.
func Wrap(bfs billy.Filesystem, typ core.FSType) *FS {
	return &FS{bfs: bfs, typ: typ}
}

// Unwrap returns the underlying billy.Filesystem.
func (b *FS) Unwrap() billy.Filesystem {
	return b.bfs
}

// Root returns the directory the storage is rooted at.
func (b *FS) Root() string {
	return b.bfs.Root()
}

func normalize(name string) string {
	name = path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	if name == "/" {
		return "."
	}
	return name[1:]
}

// dirEntry adapts fs.FileInfo to fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

func (b *FS) wrapFile(f billy.File, name string) *File {
	return &File{file: f, fs: b.bfs, name: name}
}

// Open opens the named file for reading.
func (b *FS) Open(name string) (fs.File, error) {
	name = normalize(name)
	f, err := b.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return b.wrapFile(f, name), nil
}

// Stat returns metadata for name, following symbolic links.
func (b *FS) Stat(name string) (fs.FileInfo, error) {
	return b.bfs.Stat(normalize(name))
}

// ReadDir returns the entries of a directory sorted by name.
func (b *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := b.bfs.ReadDir(normalize(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	slices.SortFunc(entries, func(a, c fs.DirEntry) int {
		return strings.Compare(a.Name(), c.Name())
	})
	return entries, nil
}

// ReadFile reads the whole named file.
func (b *FS) ReadFile(name string) ([]byte, error) {
	f, err := b.bfs.Open(normalize(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists reports whether name exists.
func (b *FS) Exists(name string) (bool, error) {
	_, err := b.bfs.Stat(normalize(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file.
func (b *FS) Create(name string) (core.File, error) {
	name = normalize(name)
	f, err := b.bfs.Create(name)
	if err != nil {
		return nil, err
	}
	return b.wrapFile(f, name), nil
}

// OpenFile opens a file with os.O_* flags.
func (b *FS) OpenFile(name string, flag int, perm fs.FileMode) (core.File, error) {
	name = normalize(name)
	f, err := b.bfs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return b.wrapFile(f, name), nil
}

// WriteFile writes data to name, creating or truncating it.
func (b *FS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return util.WriteFile(b.bfs, normalize(name), data, perm)
}

// Mkdir creates a single directory. The parent must exist.
func (b *FS) Mkdir(name string, perm fs.FileMode) error {
	name = normalize(name)
	if _, err := b.bfs.Lstat(name); err == nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if parent := path.Dir(name); parent != "." {
		info, err := b.bfs.Stat(parent)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return &fs.PathError{Op: "mkdir", Path: name, Err: core.ErrNotDir}
		}
	}
	return b.bfs.MkdirAll(name, perm)
}

// MkdirAll creates a directory and any missing parents.
func (b *FS) MkdirAll(name string, perm fs.FileMode) error {
	return b.bfs.MkdirAll(normalize(name), perm)
}

// Remove removes a file or an empty directory.
func (b *FS) Remove(name string) error {
	name = normalize(name)
	info, err := b.bfs.Lstat(name)
	if err != nil {
		return err
	}
	if info.IsDir() {
		entries, err := b.bfs.ReadDir(name)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return &fs.PathError{Op: "remove", Path: name, Err: core.ErrDirNotEmpty}
		}
	}
	return b.bfs.Remove(name)
}

// RemoveAll removes name and everything below it.
func (b *FS) RemoveAll(name string) error {
	return util.RemoveAll(b.bfs, normalize(name))
}

// Rename moves oldpath to newpath.
func (b *FS) Rename(oldpath, newpath string) error {
	return b.bfs.Rename(normalize(oldpath), normalize(newpath))
}

// Walk walks the tree rooted at root in lexical order.
func (b *FS) Walk(root string, walkFn fs.WalkDirFunc) error {
	root = normalize(root)
	info, err := b.bfs.Lstat(root)
	if err != nil {
		err = walkFn(root, nil, err)
	} else {
		err = b.walk(root, &dirEntry{info: info}, walkFn)
	}
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (b *FS) walk(name string, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	if err := walkFn(name, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, fs.SkipDir) && d.IsDir() {
			err = nil
		}
		return err
	}

	entries, err := b.ReadDir(name)
	if err != nil {
		if err = walkFn(name, d, err); err != nil {
			return err
		}
	}
	for _, entry := range entries {
		if err := b.walk(path.Join(name, entry.Name()), entry, walkFn); err != nil {
			if errors.Is(err, fs.SkipDir) {
				continue
			}
			return err
		}
	}
	return nil
}

// Chroot returns storage scoped to dir.
func (b *FS) Chroot(dir string) (core.FS, error) {
	sub, err := b.bfs.Chroot(normalize(dir))
	if err != nil {
		return nil, err
	}
	return &FS{bfs: sub, typ: b.typ}, nil
}

// Type returns the kind of storage.
func (b *FS) Type() core.FSType {
	return b.typ
}

// Lstat returns metadata for name without following a final link.
func (b *FS) Lstat(name string) (fs.FileInfo, error) {
	return b.bfs.Lstat(normalize(name))
}

// Chmod changes permission bits. Local storage whose billy wrapper hides
// billy.Change falls back to the os package.
func (b *FS) Chmod(name string, mode fs.FileMode) error {
	if ch, ok := b.bfs.(billy.Change); ok {
		return ch.Chmod(normalize(name), mode)
	}
	if b.typ == core.FSTypeLocal {
		return os.Chmod(b.hostPath(name), mode)
	}
	return &fs.PathError{Op: "chmod", Path: name, Err: core.ErrUnsupported}
}

// Chtimes changes access and modification times, with the same fallback
// as Chmod.
func (b *FS) Chtimes(name string, atime, mtime time.Time) error {
	if ch, ok := b.bfs.(billy.Change); ok {
		return ch.Chtimes(normalize(name), atime, mtime)
	}
	if b.typ == core.FSTypeLocal {
		return os.Chtimes(b.hostPath(name), atime, mtime)
	}
	return &fs.PathError{Op: "chtimes", Path: name, Err: core.ErrUnsupported}
}

// hostPath maps name onto the operating system path of local storage.
func (b *FS) hostPath(name string) string {
	return filepath.Join(b.bfs.Root(), filepath.FromSlash(normalize(name)))
}

// Symlink creates newname pointing at oldname.
func (b *FS) Symlink(oldname, newname string) error {
	return b.bfs.Symlink(oldname, normalize(newname))
}

// Readlink returns the target of a symbolic link.
func (b *FS) Readlink(name string) (string, error) {
	return b.bfs.Readlink(normalize(name))
}

// TempFile creates a temporary file in dir. An empty dir uses the
// storage's default temporary directory.
func (b *FS) TempFile(dir, pattern string) (core.File, error) {
	if dir != "" {
		dir = normalize(dir)
	}
	f, err := b.bfs.TempFile(dir, pattern)
	if err != nil {
		return nil, err
	}
	return b.wrapFile(f, normalize(f.Name())), nil
}

// TempDir creates a temporary directory in dir.
func (b *FS) TempDir(dir, pattern string) (string, error) {
	if dir != "" {
		dir = normalize(dir)
	}
	return util.TempDir(b.bfs, dir, pattern)
}

// Compile-time interface checks.
var (
	_ core.FS         = (*FS)(nil)
	_ core.MetadataFS = (*FS)(nil)
	_ core.SymlinkFS  = (*FS)(nil)
	_ core.TempFS     = (*FS)(nil)
	_ fs.ReadDirFS    = (*FS)(nil)
)
