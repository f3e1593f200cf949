// Package native provides the always-present provider backed by the host
// operating system's filesystem.
//
// The provider is a mount of go-billy's osfs at "/" with the verbs only
// the native filesystem has: path syntax, symlink canonicalization, the
// current directory, access(2), hard links, temporary files and dynamic
// code loading. It claims every non-empty path nobody else claims.
package native

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmgilman/go/vfs/backend/billy"
	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
	"github.com/jmgilman/go/vfs/internal/pathutil"
	"github.com/jmgilman/go/vfs/provider/mount"
)

// Name is the native provider's type name.
const Name = "native"

// maxLinks bounds symbolic link expansion during canonicalization.
const maxLinks = 40

// Provider is the native filesystem provider.
type Provider struct {
	*mount.Provider

	fs           *billy.FS
	root         string
	syntax       Syntax
	processChdir bool
	chdirSet     bool
	loader       LoadFunc
	tempDir      string

	mu  sync.Mutex
	cwd string
}

// New creates the native provider.
func New(opts ...Option) (*Provider, error) {
	p := &Provider{loader: pluginLoad}
	for _, opt := range opts {
		opt(p)
	}
	if !p.chdirSet {
		p.processChdir = p.root == ""
	}

	if p.root != "" {
		abs, err := filepath.Abs(p.root)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "invalid root %q", p.root)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "invalid root %q", p.root)
		}
		if !info.IsDir() {
			return nil, errors.Newf(errors.CodeInvalidConfig, "root %q is not a directory", p.root)
		}
		p.root = abs
	}

	p.fs = billy.NewLocal(p.root)
	m, err := mount.New(p.fs, mount.WithMountPoint("/"), mount.WithName(Name))
	if err != nil {
		return nil, err
	}
	p.Provider = m

	if p.root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to read working directory")
		}
		p.cwd = filepath.ToSlash(wd)
	} else {
		p.cwd = "/"
	}
	if p.tempDir == "" {
		p.tempDir = p.defaultTempDir()
	}
	return p, nil
}

func (p *Provider) defaultTempDir() string {
	if p.root != "" {
		return "/tmp"
	}
	return filepath.ToSlash(os.TempDir())
}

// Root returns the host directory serving as "/", or "" for the real root.
func (p *Provider) Root() string {
	return p.root
}

// Name returns "native".
func (p *Provider) Name() string {
	return Name
}

// ClaimPath claims every path except "". The native provider is the owner
// of last resort.
func (p *Provider) ClaimPath(vpath string) (any, bool) {
	if vpath == "" {
		return nil, false
	}
	return nil, true
}

// Volumes lists the filesystem root.
func (p *Provider) Volumes() []string {
	return []string{"/"}
}

// PathType classifies vpath with the configured syntax.
func (p *Provider) PathType(vpath string) (core.PathType, int) {
	return pathutil.Classify(vpath, p.syntax)
}

// ToSlash rewrites backslashes to "/" under Windows syntax.
func (p *Provider) ToSlash(vpath string) string {
	return pathutil.ToSlash(vpath, p.syntax)
}

// Separator returns "/".
func (p *Provider) Separator() string {
	return "/"
}

// MountsIn reports nothing: the native provider has no mount points.
func (p *Provider) MountsIn(string, string) ([]string, error) {
	return nil, nil
}

// HostPath maps a VFS path to the host path serving it.
func (p *Provider) HostPath(vpath string) (string, error) {
	name, ok := pathutil.Rel(vpath, "/", "/")
	if !ok {
		return "", &fs.PathError{Op: "hostpath", Path: vpath, Err: fs.ErrNotExist}
	}
	root := p.root
	if root == "" {
		root = "/"
	}
	return filepath.Join(root, filepath.FromSlash(name)), nil
}

// vfsPath maps a host path back into the VFS namespace.
func (p *Provider) vfsPath(host string) (string, error) {
	if p.root == "" {
		return filepath.ToSlash(host), nil
	}
	rel, err := filepath.Rel(p.root, host)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the native root", host)
	}
	if rel == "." {
		return "/", nil
	}
	return "/" + filepath.ToSlash(rel), nil
}

// Getwd reports the current directory. It fails if the directory has
// disappeared or stopped being a directory since it was set.
func (p *Provider) Getwd() (string, error) {
	if p.processChdir {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return p.vfsPath(wd)
	}

	p.mu.Lock()
	cwd := p.cwd
	p.mu.Unlock()

	info, err := p.Stat(cwd)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &fs.PathError{Op: "getwd", Path: cwd, Err: core.ErrNotDir}
	}
	return cwd, nil
}

// Chdir makes vpath the current directory. It must be a searchable
// directory.
func (p *Provider) Chdir(vpath string) error {
	info, err := p.Stat(vpath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: vpath, Err: core.ErrNotDir}
	}
	if err := p.Access(vpath, core.AccessExecute); err != nil {
		return err
	}

	if p.processChdir {
		host, err := p.HostPath(vpath)
		if err != nil {
			return err
		}
		if err := os.Chdir(host); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.cwd = vpath
	p.mu.Unlock()
	return nil
}

// Access checks vpath against the host's access(2) rules.
func (p *Provider) Access(vpath string, mode core.AccessMode) error {
	host, err := p.HostPath(vpath)
	if err != nil {
		return err
	}
	if err := access(host, mode); err != nil {
		return &fs.PathError{Op: "access", Path: vpath, Err: err}
	}
	return nil
}

// Link creates symbolic links through the backend and hard links through
// the host.
func (p *Provider) Link(vpath, target string, kind core.LinkKind) error {
	if kind != core.LinkHard {
		return p.Provider.Link(vpath, target, kind)
	}
	from, err := p.HostPath(target)
	if err != nil {
		return err
	}
	to, err := p.HostPath(vpath)
	if err != nil {
		return err
	}
	if err := os.Link(from, to); err != nil {
		return &fs.PathError{Op: "link", Path: vpath, Err: err}
	}
	return nil
}

// CreateTemp creates a temporary file in the configured temporary
// directory, creating the directory if needed.
func (p *Provider) CreateTemp(pattern string) (core.File, string, error) {
	dir, ok := pathutil.Rel(p.tempDir, "/", "/")
	if !ok {
		return nil, "", &fs.PathError{Op: "createtemp", Path: p.tempDir, Err: fs.ErrNotExist}
	}
	if err := p.fs.MkdirAll(dir, 0o700); err != nil {
		return nil, "", &fs.PathError{Op: "createtemp", Path: p.tempDir, Err: err}
	}
	f, err := p.fs.TempFile(dir, pattern)
	if err != nil {
		return nil, "", &fs.PathError{Op: "createtemp", Path: p.tempDir, Err: err}
	}
	return f, pathutil.Join("/", "/", f.Name()), nil
}

// Load loads code from vpath with the configured loader.
func (p *Provider) Load(vpath string, symbols []string) ([]any, func() error, error) {
	if p.loader == nil {
		return nil, nil, &fs.PathError{Op: "load", Path: vpath, Err: core.ErrUnsupported}
	}
	host, err := p.HostPath(vpath)
	if err != nil {
		return nil, nil, err
	}
	return p.loader(host, symbols)
}

var (
	_ core.Provider       = (*Provider)(nil)
	_ core.Claimer        = (*Provider)(nil)
	_ core.PathTyper      = (*Provider)(nil)
	_ core.SlashConverter = (*Provider)(nil)
	_ core.Canonicalizer  = (*Provider)(nil)
	_ core.CwdGetter      = (*Provider)(nil)
	_ core.Chdirer        = (*Provider)(nil)
	_ core.Accessor       = (*Provider)(nil)
	_ core.Linker         = (*Provider)(nil)
	_ core.TempFiler      = (*Provider)(nil)
	_ core.Loader         = (*Provider)(nil)
	_ core.Separatorer    = (*Provider)(nil)
	_ core.VolumeLister   = (*Provider)(nil)
)
