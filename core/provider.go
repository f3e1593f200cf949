package core

import (
	"io/fs"
	"time"
)

// Provider is a filesystem implementation that can be registered with a
// vfs.FS. Paths handed to a provider's verbs are always normalized and
// absolute, including any volume prefix the provider listed.
type Provider interface {
	// Name is the provider's type name, e.g. "native" or "memory".
	Name() string
}

// Claimer decides whether a provider owns a path. The first registered
// provider to claim a path owns it. rep is an optional provider-specific
// representation of the path that is handed back through the Rep* hooks.
type Claimer interface {
	ClaimPath(path string) (rep any, ok bool)
}

// Stater returns file metadata, following symbolic links.
type Stater interface {
	Stat(path string) (fs.FileInfo, error)
}

// Lstater returns file metadata without following a final symbolic link.
type Lstater interface {
	Lstat(path string) (fs.FileInfo, error)
}

// Accessor checks whether the caller may access a path in the given mode.
type Accessor interface {
	Access(path string, mode AccessMode) error
}

// Opener opens files. flag takes os.O_* values.
type Opener interface {
	OpenFile(path string, flag int, perm fs.FileMode) (File, error)
}

// DirMaker creates a single directory.
type DirMaker interface {
	Mkdir(path string, perm fs.FileMode) error
}

// DirRemover removes a directory. On failure, offending names the path
// inside the tree that could not be removed.
type DirRemover interface {
	RemoveDir(path string, recursive bool) (offending string, err error)
}

// FileDeleter deletes a single file.
type FileDeleter interface {
	DeleteFile(path string) error
}

// Renamer renames within one provider.
type Renamer interface {
	Rename(src, dst string) error
}

// Copier copies a single file within one provider.
type Copier interface {
	CopyFile(src, dst string) error
}

// DirCopier copies a directory tree within one provider. On failure,
// offending names the path that could not be copied.
type DirCopier interface {
	CopyDir(src, dst string) (offending string, err error)
}

// VolumeLister lists the path prefixes a provider is rooted at, such as
// "mem:/" or "s3://bucket/".
type VolumeLister interface {
	Volumes() []string
}

// Matcher lists the entries of dir whose names match pattern and whose
// type passes filter. Results are full paths.
type Matcher interface {
	Match(dir, pattern string, filter TypeFilter) ([]string, error)
}

// MountLister lists the provider's mount points that sit directly inside
// dir and whose last segment matches pattern. Results are full paths.
type MountLister interface {
	MountsIn(dir, pattern string) ([]string, error)
}

// Canonicalizer rewrites a lexically clean absolute path into the
// provider's canonical form, e.g. by resolving symbolic links. Bytes of
// path before start are already canonical. It returns the rewritten path
// and the length of its prefix that is now final.
type Canonicalizer interface {
	Canonicalize(path string, start int) (string, int)
}

// PathTyper classifies a path according to the provider's own syntax and
// reports the length of its root prefix.
type PathTyper interface {
	PathType(path string) (PathType, int)
}

// SlashConverter is implemented by providers whose syntax accepts more than
// one separator. ToSlash rewrites the alternates to "/".
type SlashConverter interface {
	ToSlash(path string) string
}

// CwdGetter reports the provider's notion of the current directory.
type CwdGetter interface {
	Getwd() (string, error)
}

// Chdirer changes the provider's current directory.
type Chdirer interface {
	Chdir(path string) error
}

// Utimer sets access and modification times.
type Utimer interface {
	Utime(path string, atime, mtime time.Time) error
}

// Linker creates a link at path pointing at target.
type Linker interface {
	Link(path, target string, kind LinkKind) error
}

// AttrProvider exposes named, string-valued file attributes.
type AttrProvider interface {
	AttrNames(path string) ([]string, error)
	Attr(path, name string) (string, error)
	SetAttr(path, name, value string) error
}

// Loader loads dynamic code from a file and resolves symbols in it. The
// returned unload function releases the loaded code.
type Loader interface {
	Load(path string, symbols []string) (handles []any, unload func() error, err error)
}

// Separatorer reports the provider's path separator. Providers without it
// use "/".
type Separatorer interface {
	Separator() string
}

// TempFiler creates temporary files and reports their full paths.
type TempFiler interface {
	CreateTemp(pattern string) (f File, path string, err error)
}

// RepCreator builds a provider-specific representation for a path.
type RepCreator interface {
	CreateRep(path string) (any, error)
}

// RepDuper duplicates a representation when a path value is copied.
type RepDuper interface {
	DupRep(rep any) any
}

// RepFreer releases a representation when a path value is closed.
type RepFreer interface {
	FreeRep(rep any)
}

// RepPather converts a representation back into a normalized path.
type RepPather interface {
	RepPath(rep any) (string, error)
}
