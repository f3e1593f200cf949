package native

import (
	"io/fs"
	"strings"

	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// Canonicalize resolves symbolic links in vpath from start onwards. A link
// in the final component is kept, so operations act on the link itself. It
// stops at the first component that does not exist and reports everything
// before it as final, so other providers can canonicalize the rest.
func (p *Provider) Canonicalize(vpath string, start int) (string, int) {
	if p.syntax != SyntaxUnix || !strings.HasPrefix(vpath, "/") {
		return vpath, start
	}

	done := segmentStart(vpath, start)
	links := 0
	for done < len(vpath) {
		i := done
		for i < len(vpath) && vpath[i] == '/' {
			i++
		}
		if i == len(vpath) {
			break
		}
		end := strings.IndexByte(vpath[i:], '/')
		if end < 0 {
			end = len(vpath)
		} else {
			end += i
		}

		prefix := vpath[:end]
		info, err := p.fs.Lstat(prefix[1:])
		if err != nil {
			return vpath, done
		}
		if info.Mode()&fs.ModeSymlink == 0 || end == len(vpath) {
			done = end
			continue
		}

		links++
		if links > maxLinks {
			return vpath, done
		}
		target, err := p.fs.Readlink(prefix[1:])
		if err != nil {
			return vpath, done
		}
		if !strings.HasPrefix(target, "/") {
			target = pathutil.Join("/", pathutil.Parent(prefix, 1, "/"), target)
		}
		vpath = pathutil.Clean(target+vpath[end:], 1, "/")
		done = 1
	}
	return vpath, len(vpath)
}

// segmentStart moves start back to the beginning of the segment it falls
// in, never before the root.
func segmentStart(vpath string, start int) int {
	if start < 1 {
		return 1
	}
	if start >= len(vpath) {
		return len(vpath)
	}
	if vpath[start] == '/' || vpath[start-1] == '/' {
		return start
	}
	return strings.LastIndexByte(vpath[:start], '/') + 1
}
