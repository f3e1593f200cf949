package mount

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gobwas/glob"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// Provider serves a core.FS backend through the VFS provider interfaces.
type Provider struct {
	name     string
	backend  core.FS
	point    string
	volume   bool
	foldCase bool
}

// New mounts backend. Either WithMountPoint or WithVolume is required.
func New(backend core.FS, opts ...Option) (*Provider, error) {
	p := &Provider{backend: backend}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.name == "" {
		p.name = backend.Type().String()
	}
	return p, nil
}

// Name returns the provider's type name.
func (p *Provider) Name() string {
	return p.name
}

// Backend returns the mounted storage.
func (p *Provider) Backend() core.FS {
	return p.backend
}

// Point returns the mount point or volume prefix.
func (p *Provider) Point() string {
	return p.point
}

// Volumes lists the volume prefix for volume mounts and nothing otherwise.
func (p *Provider) Volumes() []string {
	if !p.volume {
		return nil
	}
	return []string{p.point}
}

// ClaimPath claims the mount point and everything below it. The
// representation is the backend name.
func (p *Provider) ClaimPath(vpath string) (any, bool) {
	name, ok := p.nameOf(vpath)
	if !ok {
		return nil, false
	}
	return name, true
}

func (p *Provider) nameOf(vpath string) (string, bool) {
	if p.foldCase {
		if len(vpath) < len(p.point) || !strings.EqualFold(vpath[:len(p.point)], p.point) {
			return "", false
		}
		return pathutil.Rel(p.point+vpath[len(p.point):], p.point, "/")
	}
	return pathutil.Rel(vpath, p.point, "/")
}

// pathOf maps a backend name back into the VFS namespace.
func (p *Provider) pathOf(name string) string {
	if name == "." || name == "" {
		return p.point
	}
	return pathutil.Join("/", p.point, name)
}

// CreateRep returns the backend name for vpath.
func (p *Provider) CreateRep(vpath string) (any, error) {
	name, ok := p.nameOf(vpath)
	if !ok {
		return nil, &fs.PathError{Op: "claim", Path: vpath, Err: fs.ErrNotExist}
	}
	return name, nil
}

// RepPath turns a representation made by CreateRep back into a path.
func (p *Provider) RepPath(rep any) (string, error) {
	name, ok := rep.(string)
	if !ok {
		return "", fmt.Errorf("unexpected representation %T", rep)
	}
	return p.pathOf(name), nil
}

// resolve maps vpath to a backend name or fails with ENOENT.
func (p *Provider) resolve(op, vpath string) (string, error) {
	name, ok := p.nameOf(vpath)
	if !ok {
		return "", &fs.PathError{Op: op, Path: vpath, Err: fs.ErrNotExist}
	}
	return name, nil
}

// relabel rewrites backend path errors to carry the VFS path.
func relabel(err error, vpath string) error {
	if err == nil {
		return nil
	}
	var pe *fs.PathError
	if stderrors.As(err, &pe) {
		return &fs.PathError{Op: pe.Op, Path: vpath, Err: pe.Err}
	}
	return &fs.PathError{Op: "vfs", Path: vpath, Err: err}
}

// Stat returns metadata for vpath.
func (p *Provider) Stat(vpath string) (fs.FileInfo, error) {
	name, err := p.resolve("stat", vpath)
	if err != nil {
		return nil, err
	}
	info, err := p.backend.Stat(name)
	return info, relabel(err, vpath)
}

// Lstat returns metadata without following a final link when the backend
// has links, and Stat otherwise.
func (p *Provider) Lstat(vpath string) (fs.FileInfo, error) {
	name, err := p.resolve("lstat", vpath)
	if err != nil {
		return nil, err
	}
	if m, ok := p.backend.(core.MetadataFS); ok {
		info, err := m.Lstat(name)
		return info, relabel(err, vpath)
	}
	info, err := p.backend.Stat(name)
	return info, relabel(err, vpath)
}

// Access checks existence and, for archives, refuses write access.
func (p *Provider) Access(vpath string, mode core.AccessMode) error {
	info, err := p.Stat(vpath)
	if err != nil {
		return err
	}
	if mode&core.AccessWrite != 0 && p.backend.Type() == core.FSTypeArchive {
		return &fs.PathError{Op: "access", Path: vpath, Err: fs.ErrPermission}
	}
	if mode&core.AccessExecute != 0 && !info.IsDir() && info.Mode().Perm()&0o111 == 0 {
		return &fs.PathError{Op: "access", Path: vpath, Err: fs.ErrPermission}
	}
	return nil
}

// OpenFile opens vpath with os.O_* flags.
func (p *Provider) OpenFile(vpath string, flag int, perm fs.FileMode) (core.File, error) {
	name, err := p.resolve("open", vpath)
	if err != nil {
		return nil, err
	}
	f, err := p.backend.OpenFile(name, flag, perm)
	if err != nil {
		return nil, relabel(err, vpath)
	}
	return f, nil
}

// Mkdir creates a single directory.
func (p *Provider) Mkdir(vpath string, perm fs.FileMode) error {
	name, err := p.resolve("mkdir", vpath)
	if err != nil {
		return err
	}
	return relabel(p.backend.Mkdir(name, perm), vpath)
}

// RemoveDir removes a directory. A recursive removal deletes children
// depth-first and stops at the first failure, which it reports as the
// offending path. The mount point itself cannot be removed.
func (p *Provider) RemoveDir(vpath string, recursive bool) (string, error) {
	name, err := p.resolve("rmdir", vpath)
	if err != nil {
		return vpath, err
	}
	if name == "." {
		return vpath, &fs.PathError{Op: "rmdir", Path: vpath, Err: syscall.EBUSY}
	}

	info, err := p.backend.Stat(name)
	if err != nil {
		return vpath, relabel(err, vpath)
	}
	if !info.IsDir() {
		return vpath, &fs.PathError{Op: "rmdir", Path: vpath, Err: core.ErrNotDir}
	}
	if !recursive {
		entries, err := p.backend.ReadDir(name)
		if err != nil {
			return vpath, relabel(err, vpath)
		}
		if len(entries) > 0 {
			return vpath, &fs.PathError{Op: "rmdir", Path: vpath, Err: core.ErrDirNotEmpty}
		}
		if err := p.backend.Remove(name); err != nil {
			return vpath, relabel(err, vpath)
		}
		return "", nil
	}
	if failed, err := p.removeTree(name); err != nil {
		return p.pathOf(failed), relabel(err, p.pathOf(failed))
	}
	return "", nil
}

func (p *Provider) removeTree(name string) (string, error) {
	entries, err := p.backend.ReadDir(name)
	if err != nil {
		return name, err
	}
	for _, e := range entries {
		child := path.Join(name, e.Name())
		if e.IsDir() {
			if failed, err := p.removeTree(child); err != nil {
				return failed, err
			}
			continue
		}
		if err := p.backend.Remove(child); err != nil {
			return child, err
		}
	}
	if err := p.backend.Remove(name); err != nil {
		return name, err
	}
	return "", nil
}

// DeleteFile removes a single non-directory entry.
func (p *Provider) DeleteFile(vpath string) error {
	name, err := p.resolve("remove", vpath)
	if err != nil {
		return err
	}
	info, err := p.lstatName(name)
	if err != nil {
		return relabel(err, vpath)
	}
	if info.IsDir() {
		return &fs.PathError{Op: "remove", Path: vpath, Err: syscall.EISDIR}
	}
	return relabel(p.backend.Remove(name), vpath)
}

func (p *Provider) lstatName(name string) (fs.FileInfo, error) {
	if m, ok := p.backend.(core.MetadataFS); ok {
		return m.Lstat(name)
	}
	return p.backend.Stat(name)
}

// Rename moves src to dst within the backend.
func (p *Provider) Rename(src, dst string) error {
	from, err := p.resolve("rename", src)
	if err != nil {
		return err
	}
	to, err := p.resolve("rename", dst)
	if err != nil {
		return err
	}
	return relabel(p.backend.Rename(from, to), src)
}

// objectCopier is implemented by backends with server-side copies.
type objectCopier interface {
	CopyObject(src, dst string) error
}

// prefixCopier is implemented by backends that copy whole trees
// server-side.
type prefixCopier interface {
	CopyPrefix(src, dst string) error
}

// CopyFile copies one file, server-side when the backend can.
func (p *Provider) CopyFile(src, dst string) error {
	from, err := p.resolve("copy", src)
	if err != nil {
		return err
	}
	to, err := p.resolve("copy", dst)
	if err != nil {
		return err
	}
	if c, ok := p.backend.(objectCopier); ok {
		return relabel(c.CopyObject(from, to), src)
	}
	return relabel(copyFile(p.backend, from, to), src)
}

func copyFile(b core.FS, from, to string) error {
	info, err := b.Stat(from)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "copy", Path: from, Err: syscall.EISDIR}
	}

	in, err := b.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := b.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if m, ok := b.(core.MetadataFS); ok {
		_ = m.Chtimes(to, info.ModTime(), info.ModTime())
	}
	return nil
}

// CopyDir copies a directory tree. The first entry that fails to copy is
// reported as the offending path.
func (p *Provider) CopyDir(src, dst string) (string, error) {
	from, err := p.resolve("copy", src)
	if err != nil {
		return src, err
	}
	to, err := p.resolve("copy", dst)
	if err != nil {
		return dst, err
	}
	if c, ok := p.backend.(prefixCopier); ok {
		if err := c.CopyPrefix(from, to); err != nil {
			return src, relabel(err, src)
		}
		return "", nil
	}

	var failed string
	err = p.backend.Walk(from, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			failed = name
			return err
		}
		target := path.Join(to, relName(name, from))
		if d.IsDir() {
			if err := p.backend.MkdirAll(target, 0o755); err != nil {
				failed = name
				return err
			}
			return nil
		}
		if err := copyFile(p.backend, name, target); err != nil {
			failed = name
			return err
		}
		return nil
	})
	if err != nil {
		if failed == "" {
			failed = from
		}
		return p.pathOf(failed), relabel(err, p.pathOf(failed))
	}
	return "", nil
}

// relName returns name relative to the walk root from.
func relName(name, from string) string {
	if from == "." {
		if name == "." {
			return ""
		}
		return name
	}
	return strings.TrimPrefix(strings.TrimPrefix(name, from), "/")
}

// Match lists entries of dir whose names match the glob pattern and whose
// type passes filter.
func (p *Provider) Match(dir, pattern string, filter core.TypeFilter) ([]string, error) {
	name, err := p.resolve("glob", dir)
	if err != nil {
		return nil, err
	}
	g, err := p.compile(pattern)
	if err != nil {
		return nil, err
	}
	entries, err := p.backend.ReadDir(name)
	if err != nil {
		return nil, relabel(err, dir)
	}

	var out []string
	for _, e := range entries {
		if !p.match(g, e.Name()) || !filter.Admits(e.Type()) {
			continue
		}
		out = append(out, pathutil.Join("/", dir, e.Name()))
	}
	return out, nil
}

// MountsIn reports the mount point when it sits directly inside dir and
// its last segment matches pattern. Volume mounts have no mount point.
func (p *Provider) MountsIn(dir, pattern string) ([]string, error) {
	if p.volume || p.point == "/" {
		return nil, nil
	}
	if pathutil.Parent(p.point, 1, "/") != dir {
		return nil, nil
	}
	g, err := p.compile(pattern)
	if err != nil {
		return nil, err
	}
	if !p.match(g, pathutil.Base(p.point, 1, "/")) {
		return nil, nil
	}
	return []string{p.point}, nil
}

func (p *Provider) compile(pattern string) (glob.Glob, error) {
	if p.foldCase {
		pattern = strings.ToLower(pattern)
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, &fs.PathError{Op: "glob", Path: pattern, Err: fs.ErrInvalid}
	}
	return g, nil
}

func (p *Provider) match(g glob.Glob, name string) bool {
	if p.foldCase {
		name = strings.ToLower(name)
	}
	return g.Match(name)
}

// Canonicalize rewrites owned paths to the case stored in the backend for
// case-insensitive mounts. Components that do not exist are kept as given.
func (p *Provider) Canonicalize(vpath string, start int) (string, int) {
	name, ok := p.nameOf(vpath)
	if !ok {
		return vpath, start
	}
	if !p.foldCase || name == "." {
		return vpath, len(vpath)
	}

	segs := strings.Split(name, "/")
	cur := "."
	for i, seg := range segs {
		entries, err := p.backend.ReadDir(cur)
		if err != nil {
			break
		}
		found := false
		for _, e := range entries {
			if strings.EqualFold(e.Name(), seg) {
				segs[i] = e.Name()
				found = true
				break
			}
		}
		if !found {
			break
		}
		cur = path.Join(cur, segs[i])
	}
	out := p.pathOf(strings.Join(segs, "/"))
	return out, len(out)
}

// Utime sets access and modification times when the backend supports it.
func (p *Provider) Utime(vpath string, atime, mtime time.Time) error {
	name, err := p.resolve("utime", vpath)
	if err != nil {
		return err
	}
	m, ok := p.backend.(core.MetadataFS)
	if !ok {
		return &fs.PathError{Op: "utime", Path: vpath, Err: core.ErrUnsupported}
	}
	return relabel(m.Chtimes(name, atime, mtime), vpath)
}

// Link creates a symbolic link at vpath. Targets inside the mount are
// stored relative to the backend root; other targets are stored as given.
// Hard links are unsupported.
func (p *Provider) Link(vpath, target string, kind core.LinkKind) error {
	name, err := p.resolve("link", vpath)
	if err != nil {
		return err
	}
	s, ok := p.backend.(core.SymlinkFS)
	if !ok || kind != core.LinkSymbolic {
		return &fs.PathError{Op: "link", Path: vpath, Err: core.ErrUnsupported}
	}
	if t, ok := p.nameOf(target); ok {
		target = "/"
		if t != "." {
			target += t
		}
	}
	return relabel(s.Symlink(target, name), vpath)
}

// Attribute names understood by AttrProvider.
const (
	AttrPermissions = "permissions"
	AttrMtime       = "mtime"
	AttrSize        = "size"
)

// AttrNames lists the supported attributes.
func (p *Provider) AttrNames(vpath string) ([]string, error) {
	if _, err := p.Stat(vpath); err != nil {
		return nil, err
	}
	return []string{AttrMtime, AttrPermissions, AttrSize}, nil
}

// Attr returns one attribute formatted as a string.
func (p *Provider) Attr(vpath, attr string) (string, error) {
	info, err := p.Stat(vpath)
	if err != nil {
		return "", err
	}
	switch attr {
	case AttrPermissions:
		return fmt.Sprintf("%#o", info.Mode().Perm()), nil
	case AttrMtime:
		return strconv.FormatInt(info.ModTime().Unix(), 10), nil
	case AttrSize:
		return strconv.FormatInt(info.Size(), 10), nil
	}
	return "", &fs.PathError{Op: "attr", Path: vpath, Err: fmt.Errorf("%w: unknown attribute %q", fs.ErrInvalid, attr)}
}

// SetAttr changes permissions or mtime when the backend has metadata.
func (p *Provider) SetAttr(vpath, attr, value string) error {
	name, err := p.resolve("attr", vpath)
	if err != nil {
		return err
	}
	m, ok := p.backend.(core.MetadataFS)
	if !ok {
		return &fs.PathError{Op: "attr", Path: vpath, Err: core.ErrUnsupported}
	}

	switch attr {
	case AttrPermissions:
		perm, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return &fs.PathError{Op: "attr", Path: vpath, Err: fs.ErrInvalid}
		}
		return relabel(m.Chmod(name, fs.FileMode(perm).Perm()), vpath)
	case AttrMtime:
		secs, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &fs.PathError{Op: "attr", Path: vpath, Err: fs.ErrInvalid}
		}
		t := time.Unix(secs, 0)
		return relabel(m.Chtimes(name, t, t), vpath)
	}
	return &fs.PathError{Op: "attr", Path: vpath, Err: fmt.Errorf("%w: attribute %q is read-only or unknown", fs.ErrInvalid, attr)}
}

var (
	_ core.Provider      = (*Provider)(nil)
	_ core.Claimer       = (*Provider)(nil)
	_ core.Stater        = (*Provider)(nil)
	_ core.Lstater       = (*Provider)(nil)
	_ core.Accessor      = (*Provider)(nil)
	_ core.Opener        = (*Provider)(nil)
	_ core.DirMaker      = (*Provider)(nil)
	_ core.DirRemover    = (*Provider)(nil)
	_ core.FileDeleter   = (*Provider)(nil)
	_ core.Renamer       = (*Provider)(nil)
	_ core.Copier        = (*Provider)(nil)
	_ core.DirCopier     = (*Provider)(nil)
	_ core.VolumeLister  = (*Provider)(nil)
	_ core.Matcher       = (*Provider)(nil)
	_ core.MountLister   = (*Provider)(nil)
	_ core.Canonicalizer = (*Provider)(nil)
	_ core.Utimer        = (*Provider)(nil)
	_ core.Linker        = (*Provider)(nil)
	_ core.AttrProvider  = (*Provider)(nil)
	_ core.RepCreator    = (*Provider)(nil)
	_ core.RepPather     = (*Provider)(nil)
)
