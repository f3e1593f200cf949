package core

import "io/fs"

// PathType classifies a path string.
type PathType int

const (
	// PathAbsolute is anchored at a root or volume.
	PathAbsolute PathType = iota
	// PathRelative is interpreted against the current directory.
	PathRelative
	// PathVolumeRelative is anchored at the current volume but not at a
	// specific one, e.g. "/x" on a drive-letter system.
	PathVolumeRelative
)

// String returns a string representation of the PathType.
func (t PathType) String() string {
	switch t {
	case PathAbsolute:
		return "absolute"
	case PathRelative:
		return "relative"
	case PathVolumeRelative:
		return "volumerelative"
	default:
		return "unknown"
	}
}

// AccessMode is a bitmask of access checks, matching access(2).
type AccessMode uint32

const (
	// AccessExists only checks for existence.
	AccessExists AccessMode = 0
	// AccessExecute checks for execute (search) permission.
	AccessExecute AccessMode = 1
	// AccessWrite checks for write permission.
	AccessWrite AccessMode = 2
	// AccessRead checks for read permission.
	AccessRead AccessMode = 4
)

// LinkKind selects the kind of link Linker creates.
type LinkKind int

const (
	// LinkSymbolic creates a symbolic link.
	LinkSymbolic LinkKind = iota
	// LinkHard creates a hard link.
	LinkHard
)

// TypeFilter restricts directory matches by entry type. The zero value
// admits everything.
type TypeFilter uint8

const (
	// TypeFile admits regular files.
	TypeFile TypeFilter = 1 << iota
	// TypeDir admits directories.
	TypeDir
	// TypeLink admits symbolic links.
	TypeLink
)

// AdmitsDirs reports whether directories pass the filter.
func (f TypeFilter) AdmitsDirs() bool {
	return f == 0 || f&TypeDir != 0
}

// Admits reports whether an entry with the given mode passes the filter.
func (f TypeFilter) Admits(mode fs.FileMode) bool {
	if f == 0 {
		return true
	}
	switch {
	case mode&fs.ModeSymlink != 0:
		return f&TypeLink != 0
	case mode.IsDir():
		return f&TypeDir != 0
	default:
		return f&TypeFile != 0
	}
}
