package core

import (
	"io"
	"io/fs"
	"time"
)

// FSType represents the kind of storage behind a backend.
type FSType int

const (
	// FSTypeUnknown indicates the storage kind is unknown.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates disk-backed storage.
	FSTypeLocal
	// FSTypeMemory indicates in-memory storage.
	FSTypeMemory
	// FSTypeRemote indicates remote storage such as S3.
	FSTypeRemote
	// FSTypeArchive indicates a read-only archive such as a zip file.
	FSTypeArchive
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	case FSTypeRemote:
		return "remote"
	case FSTypeArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// FS is a storage backend. Names are slash-separated and relative to the
// backend root; "." and "" name the root itself.
//
// FS embeds fs.FS so any backend can be handed to fs.WalkDir, fs.Glob and
// friends.
type FS interface {
	fs.FS
	ReadFS
	WriteFS
	ManageFS
	WalkFS
	ChrootFS

	// Type returns the kind of storage behind the backend.
	Type() FSType
}

// ReadFS defines read-only operations. Every backend supports them.
type ReadFS interface {
	// Open opens the named file for reading.
	Open(name string) (fs.File, error)

	// Stat returns file metadata. Errors are *fs.PathError.
	Stat(name string) (fs.FileInfo, error)

	// ReadDir returns the entries of a directory sorted by name.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the whole named file.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the name exists. A false result with a nil
	// error means it does not; a non-nil error means existence could not be
	// determined.
	Exists(name string) (bool, error)
}

// WriteFS defines write operations. Read-only backends return
// ErrUnsupported or fs.ErrPermission.
type WriteFS interface {
	// Create creates or truncates the named file.
	Create(name string) (File, error)

	// OpenFile opens a file with os.O_* flags. Flag support varies by
	// backend and is documented by each implementation.
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)

	// WriteFile writes data to the named file, creating or truncating it.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Mkdir creates a directory. The parent must exist; an existing target
	// yields fs.ErrExist.
	Mkdir(name string, perm fs.FileMode) error

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string, perm fs.FileMode) error
}

// ManageFS defines removal and renaming.
type ManageFS interface {
	// Remove removes a file or an empty directory.
	Remove(name string) error

	// RemoveAll removes path and everything below it. A missing path is not
	// an error.
	RemoveAll(path string) error

	// Rename moves oldpath to newpath within the backend.
	Rename(oldpath, newpath string) error
}

// WalkFS defines tree traversal in lexical order.
type WalkFS interface {
	Walk(root string, walkFn fs.WalkDirFunc) error
}

// ChrootFS defines scoped views of a backend.
type ChrootFS interface {
	// Chroot returns a backend whose root is dir.
	Chroot(dir string) (FS, error)
}

// File is an open file handle that can also be written.
type File interface {
	fs.File
	io.Writer

	// Name returns the name the file was opened with.
	Name() string
}

// Truncater is implemented by files that can be truncated.
type Truncater interface {
	Truncate(size int64) error
}

// Syncer is implemented by files that can be flushed to stable storage.
type Syncer interface {
	Sync() error
}

// MetadataFS is implemented by backends with POSIX-like metadata.
type MetadataFS interface {
	// Lstat returns file info without following a final symbolic link.
	Lstat(name string) (fs.FileInfo, error)

	// Chmod changes permission bits.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes changes access and modification times.
	Chtimes(name string, atime, mtime time.Time) error
}

// SymlinkFS is implemented by backends with symbolic links.
type SymlinkFS interface {
	// Symlink creates newname pointing at oldname. oldname is stored as-is.
	Symlink(oldname, newname string) error

	// Readlink returns the target of a symbolic link.
	Readlink(name string) (string, error)
}

// TempFS is implemented by backends that can create temporary files.
type TempFS interface {
	// TempFile creates a new file in dir whose name starts with pattern.
	// An empty dir selects the backend's default temporary directory.
	TempFile(dir, pattern string) (File, error)

	// TempDir creates a new directory in dir whose name starts with pattern.
	TempDir(dir, pattern string) (string, error)
}
