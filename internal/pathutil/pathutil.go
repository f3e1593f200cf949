// Package pathutil provides lexical path helpers shared by the VFS layer and
// its providers. Nothing here touches a filesystem.
package pathutil

import (
	"strings"

	"github.com/jmgilman/go/vfs/core"
)

// Syntax selects the native path rules used by Classify.
type Syntax int

const (
	// SyntaxUnix treats "/" and "~" prefixes as absolute.
	SyntaxUnix Syntax = iota
	// SyntaxWindows understands drive letters and UNC shares.
	SyntaxWindows
)

// String returns the name used in configuration files.
func (s Syntax) String() string {
	if s == SyntaxWindows {
		return "windows"
	}
	return "unix"
}

// ParseSyntax parses "unix" or "windows". Anything else is false.
func ParseSyntax(name string) (Syntax, bool) {
	switch strings.ToLower(name) {
	case "", "unix":
		return SyntaxUnix, true
	case "windows":
		return SyntaxWindows, true
	}
	return SyntaxUnix, false
}

// Classify returns the type of path under the given syntax and the length
// of its root prefix. The root of an absolute Unix path is "/", of a tilde
// path "~user", of a drive path "C:/" and of a UNC path "//host/share/".
func Classify(path string, syntax Syntax) (core.PathType, int) {
	if path == "" {
		return core.PathRelative, 0
	}
	if path[0] == '~' {
		return core.PathAbsolute, tildeLen(path, syntax)
	}
	if syntax == SyntaxUnix {
		if path[0] == '/' {
			return core.PathAbsolute, 1
		}
		return core.PathRelative, 0
	}

	if n := uncLen(path); n > 0 {
		return core.PathAbsolute, n
	}
	if len(path) >= 2 && isLetter(path[0]) && path[1] == ':' {
		if len(path) >= 3 && isWinSep(path[2]) {
			return core.PathAbsolute, 3
		}
		return core.PathVolumeRelative, 2
	}
	if isWinSep(path[0]) {
		return core.PathVolumeRelative, 1
	}
	return core.PathRelative, 0
}

// Clean lexically simplifies path. The first rootLen bytes are kept as-is.
// Empty and "." segments are dropped, ".." removes the previous segment but
// never the root, and trailing separators are removed. A relative path that
// cleans to nothing becomes ".".
func Clean(path string, rootLen int, sep string) string {
	if sep == "" {
		sep = "/"
	}
	if rootLen > len(path) {
		rootLen = len(path)
	}
	root, rest := path[:rootLen], path[rootLen:]

	out := make([]string, 0, strings.Count(rest, sep)+1)
	for _, seg := range strings.Split(rest, sep) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
				continue
			}
			if root != "" {
				// at the root already
				continue
			}
		}
		out = append(out, seg)
	}

	if root == "" {
		if len(out) == 0 {
			return "."
		}
		return strings.Join(out, sep)
	}
	if len(out) == 0 {
		return root
	}
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return root + strings.Join(out, sep)
}

// Split breaks path into its root (if any) followed by its non-empty
// segments. Join reverses it.
func Split(path string, rootLen int, sep string) []string {
	if sep == "" {
		sep = "/"
	}
	if rootLen > len(path) {
		rootLen = len(path)
	}
	var parts []string
	if rootLen > 0 {
		parts = append(parts, path[:rootLen])
	}
	for _, seg := range strings.Split(path[rootLen:], sep) {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

// Join concatenates elements with sep, never doubling a separator that an
// element already ends with. Empty elements are skipped.
func Join(sep string, elems ...string) string {
	if sep == "" {
		sep = "/"
	}
	var b strings.Builder
	for _, e := range elems {
		if e == "" {
			continue
		}
		if b.Len() > 0 && !strings.HasSuffix(b.String(), sep) {
			b.WriteString(sep)
		}
		b.WriteString(strings.TrimPrefix(e, sepIf(b.Len() > 0, sep)))
	}
	return b.String()
}

// HasPrefix reports whether path equals prefix or lies below it. The match
// is aligned on segment boundaries, so "/ab" is not below "/a".
func HasPrefix(path, prefix, sep string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) || strings.HasSuffix(prefix, sep) {
		return true
	}
	return strings.HasPrefix(path[len(prefix):], sep)
}

// Rel returns path relative to prefix as a slash-separated backend name,
// "." for prefix itself. ok is false when path is not at or below prefix.
func Rel(path, prefix, sep string) (name string, ok bool) {
	if !HasPrefix(path, prefix, sep) {
		return "", false
	}
	rest := strings.TrimPrefix(path[len(prefix):], sep)
	if rest == "" {
		return ".", true
	}
	if sep != "/" {
		rest = strings.ReplaceAll(rest, sep, "/")
	}
	return rest, true
}

// CommonPrefixLen returns the length of the longest common prefix of a and
// b that ends on a segment boundary of both. rootLen bytes are always
// considered common when the roots match.
func CommonPrefixLen(a, b string, rootLen int, sep string) int {
	if rootLen > len(a) || rootLen > len(b) || a[:rootLen] != b[:rootLen] {
		return 0
	}
	n := rootLen
	i := rootLen
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
		if strings.HasSuffix(a[:i], sep) {
			n = i
		}
	}
	if (i == len(a) || strings.HasPrefix(a[i:], sep)) && (i == len(b) || strings.HasPrefix(b[i:], sep)) {
		n = i
	}
	return n
}

// Parent returns the directory containing path, or path itself at the root.
func Parent(path string, rootLen int, sep string) string {
	if len(path) <= rootLen {
		return path
	}
	i := strings.LastIndex(path[rootLen:], sep)
	if i <= 0 {
		if rootLen == 0 {
			return "."
		}
		return path[:rootLen]
	}
	return path[:rootLen+i]
}

// Base returns the last segment of path, or path itself at the root.
func Base(path string, rootLen int, sep string) string {
	if len(path) <= rootLen {
		return path
	}
	rest := path[rootLen:]
	if i := strings.LastIndex(rest, sep); i >= 0 {
		return rest[i+len(sep):]
	}
	return rest
}

// ToSlash rewrites backslashes to forward slashes for Windows syntax.
func ToSlash(path string, syntax Syntax) string {
	if syntax != SyntaxWindows {
		return path
	}
	return strings.ReplaceAll(path, "\\", "/")
}

func tildeLen(path string, syntax Syntax) int {
	end := strings.IndexByte(path, '/')
	if syntax == SyntaxWindows {
		if i := strings.IndexByte(path, '\\'); i >= 0 && (end < 0 || i < end) {
			end = i
		}
	}
	if end < 0 {
		return len(path)
	}
	return end
}

// uncLen returns the root length of "//host/share/rest", or 0.
func uncLen(path string) int {
	if len(path) < 5 || !isWinSep(path[0]) || !isWinSep(path[1]) || isWinSep(path[2]) {
		return 0
	}
	host := strings.IndexAny(path[2:], "/\\")
	if host <= 0 {
		return 0
	}
	start := 2 + host + 1
	if start >= len(path) {
		return 0
	}
	share := strings.IndexAny(path[start:], "/\\")
	if share == 0 {
		return 0
	}
	if share < 0 {
		return len(path)
	}
	return start + share + 1
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isWinSep(c byte) bool {
	return c == '/' || c == '\\'
}

func sepIf(cond bool, sep string) string {
	if cond {
		return sep
	}
	return ""
}
