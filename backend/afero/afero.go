// Package afero provides afero backed storage for VFS providers. Its main
// use is mounting zip archives read-only through afero's zipfs.
package afero

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/afero/zipfs"

	"github.com/jmgilman/go/vfs/core"
)

// FS adapts an afero.Fs to core.FS.
type FS struct {
	afs afero.Fs
	typ core.FSType
}

// Wrap adapts an existing afero.Fs.
func Wrap(afs afero.Fs, typ core.FSType) *FS {
	return &FS{afs: afs, typ: typ}
}

// NewZip mounts an archive that is already in memory or on random-access
// storage.
func NewZip(r io.ReaderAt, size int64) (*FS, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &FS{afs: zipfs.New(zr), typ: core.FSTypeArchive}, nil
}

// NewZipFrom reads the archive name from another backend, so archives can
// live on any mounted storage, and mounts it.
func NewZipFrom(src core.ReadFS, name string) (*FS, error) {
	data, err := src.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return NewZip(bytes.NewReader(data), int64(len(data)))
}

// Unwrap returns the underlying afero.Fs.
func (a *FS) Unwrap() afero.Fs {
	return a.afs
}

// abs maps a backend name onto afero's rooted form.
func abs(name string) string {
	return path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
}

type dirEntry struct {
	info fs.FileInfo
}

func (d dirEntry) Name() string               { return d.info.Name() }
func (d dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// File keeps the backend-relative name afero's own Name would lose.
type File struct {
	afero.File
	name string
}

// Name returns the name the file was opened with.
func (f *File) Name() string {
	return f.name
}

func (a *FS) wrap(f afero.File, name string) *File {
	return &File{File: f, name: name}
}

// Open opens the named file for reading.
func (a *FS) Open(name string) (fs.File, error) {
	f, err := a.afs.Open(abs(name))
	if err != nil {
		return nil, err
	}
	return a.wrap(f, name), nil
}

// Stat returns file metadata.
func (a *FS) Stat(name string) (fs.FileInfo, error) {
	return a.afs.Stat(abs(name))
}

// Lstat returns metadata without following a final link when the
// underlying filesystem can tell the difference.
func (a *FS) Lstat(name string) (fs.FileInfo, error) {
	if l, ok := a.afs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(abs(name))
		return info, err
	}
	return a.afs.Stat(abs(name))
}

// Chmod changes permission bits. Read-only filesystems such as zipfs
// refuse it.
func (a *FS) Chmod(name string, mode fs.FileMode) error {
	return a.afs.Chmod(abs(name), mode)
}

// Chtimes changes access and modification times.
func (a *FS) Chtimes(name string, atime, mtime time.Time) error {
	return a.afs.Chtimes(abs(name), atime, mtime)
}

// ReadDir returns directory entries sorted by name.
func (a *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(a.afs, abs(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = dirEntry{info: info}
	}
	return entries, nil
}

// ReadFile reads the whole named file.
func (a *FS) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(a.afs, abs(name))
}

// Exists reports whether name exists.
func (a *FS) Exists(name string) (bool, error) {
	return afero.Exists(a.afs, abs(name))
}

// Create creates or truncates the named file.
func (a *FS) Create(name string) (core.File, error) {
	f, err := a.afs.Create(abs(name))
	if err != nil {
		return nil, err
	}
	return a.wrap(f, name), nil
}

// OpenFile opens a file with os.O_* flags.
func (a *FS) OpenFile(name string, flag int, perm fs.FileMode) (core.File, error) {
	f, err := a.afs.OpenFile(abs(name), flag, perm)
	if err != nil {
		return nil, err
	}
	return a.wrap(f, name), nil
}

// WriteFile writes data to name, creating or truncating it.
func (a *FS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.afs, abs(name), data, perm)
}

// Mkdir creates a single directory.
func (a *FS) Mkdir(name string, perm fs.FileMode) error {
	return a.afs.Mkdir(abs(name), perm)
}

// MkdirAll creates a directory and any missing parents.
func (a *FS) MkdirAll(name string, perm fs.FileMode) error {
	return a.afs.MkdirAll(abs(name), perm)
}

// Remove removes a file or an empty directory.
func (a *FS) Remove(name string) error {
	return a.afs.Remove(abs(name))
}

// RemoveAll removes name and everything below it.
func (a *FS) RemoveAll(name string) error {
	return a.afs.RemoveAll(abs(name))
}

// Rename moves oldpath to newpath.
func (a *FS) Rename(oldpath, newpath string) error {
	return a.afs.Rename(abs(oldpath), abs(newpath))
}

// Walk walks the tree rooted at root in lexical order. Paths passed to
// walkFn are backend-relative.
func (a *FS) Walk(root string, walkFn fs.WalkDirFunc) error {
	base := abs(root)
	err := afero.Walk(a.afs, base, func(p string, info fs.FileInfo, err error) error {
		rel := strings.TrimPrefix(strings.TrimPrefix(p, base), "/")
		name := path.Join(strings.TrimPrefix(base, "/"), rel)
		if name == "" {
			name = "."
		}
		if info == nil {
			return walkFn(name, nil, err)
		}
		return walkFn(name, dirEntry{info: info}, err)
	})
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

// Chroot returns storage scoped to dir.
func (a *FS) Chroot(dir string) (core.FS, error) {
	info, err := a.afs.Stat(abs(dir))
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "chroot", Path: dir, Err: core.ErrNotDir}
	}
	return &FS{afs: afero.NewBasePathFs(a.afs, abs(dir)), typ: a.typ}, nil
}

// Type returns the kind of storage.
func (a *FS) Type() core.FSType {
	return a.typ
}

var (
	_ core.FS         = (*FS)(nil)
	_ core.MetadataFS = (*FS)(nil)
	_ core.File       = (*File)(nil)
)
