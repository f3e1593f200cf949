package billy

import (
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"

	"github.com/jmgilman/go/vfs/core"
)

// File adapts billy.File to core.File. The name is kept separately because
// billy backends disagree on what File.Name returns.
type File struct {
	file billy.File
	fs   billy.Basic
	name string
}

// Read reads from the file.
func (f *File) Read(p []byte) (int, error) {
	return f.file.Read(p)
}

// ReadAt reads from the file at an offset.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

// Write writes to the file.
func (f *File) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

// Close closes the file.
func (f *File) Close() error {
	return f.file.Close()
}

// Stat asks the owning filesystem, since billy.File has no Stat.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.fs.Stat(f.name)
}

// Name returns the storage-relative name the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Seek sets the offset for the next Read or Write.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

// Truncate changes the size of the file.
func (f *File) Truncate(size int64) error {
	return f.file.Truncate(size)
}

// Sync flushes the file when the backend supports it and is a no-op
// otherwise.
func (f *File) Sync() error {
	if s, ok := f.file.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

var (
	_ core.File      = (*File)(nil)
	_ io.Seeker      = (*File)(nil)
	_ io.ReaderAt    = (*File)(nil)
	_ core.Truncater = (*File)(nil)
	_ core.Syncer    = (*File)(nil)
)
