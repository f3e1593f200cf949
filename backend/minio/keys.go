package minio

import (
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// cleanKey turns a backend name into a slash-separated key without leading
// or trailing slashes. The root is "".
func cleanKey(name string) string {
	name = path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	return strings.Trim(name, "/")
}

func joinKey(prefix, name string) string {
	name = cleanKey(name)
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "/" + name
	}
}

// dirKey returns key as a listing prefix ending in "/", or "" at the root.
func dirKey(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}

func baseName(name string) string {
	name = cleanKey(name)
	if name == "" {
		return "."
	}
	return path.Base(name)
}

// fileInfo describes an object or a virtual directory.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.dir }
func (fi *fileInfo) Sys() any           { return nil }

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

// dirEntry adapts fileInfo to fs.DirEntry.
type dirEntry struct {
	info *fileInfo
}

func (d dirEntry) Name() string               { return d.info.name }
func (d dirEntry) IsDir() bool                { return d.info.dir }
func (d dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// entryFromObject converts a non-recursive listing result below prefix.
// ok is false for the directory marker itself.
func entryFromObject(prefix string, obj minio.ObjectInfo) (dirEntry, bool) {
	rel := strings.TrimPrefix(obj.Key, prefix)
	isDir := strings.HasSuffix(rel, "/")
	rel = strings.TrimSuffix(rel, "/")
	if rel == "" {
		return dirEntry{}, false
	}
	return dirEntry{info: &fileInfo{
		name:    rel,
		size:    obj.Size,
		modTime: obj.LastModified,
		dir:     isDir,
	}}, true
}
