package mount

import (
	"github.com/jmgilman/go/vfs/errors"
	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// Option configures a Provider.
type Option func(*Provider)

// WithMountPoint mounts the backend at an absolute path such as "/d/v".
func WithMountPoint(point string) Option {
	return func(p *Provider) {
		p.point = point
		p.volume = false
	}
}

// WithVolume mounts the backend under its own volume prefix such as
// "mem:/". The prefix is reported by Volumes.
func WithVolume(prefix string) Option {
	return func(p *Provider) {
		p.point = prefix
		p.volume = true
	}
}

// WithName overrides the provider's type name.
func WithName(name string) Option {
	return func(p *Provider) {
		p.name = name
	}
}

// WithCaseInsensitive matches names regardless of case and canonicalizes
// paths to the case stored in the backend.
func WithCaseInsensitive() Option {
	return func(p *Provider) {
		p.foldCase = true
	}
}

func (p *Provider) validate() error {
	if p.backend == nil {
		return errors.New(errors.CodeInvalidInput, "backend is nil")
	}
	if p.point == "" {
		return errors.New(errors.CodeInvalidConfig, "mount point or volume is required")
	}
	if !p.volume && p.point[0] != '/' {
		return errors.Newf(errors.CodeInvalidConfig, "mount point %q is not absolute", p.point)
	}
	if p.volume && p.point[len(p.point)-1] != '/' {
		return errors.Newf(errors.CodeInvalidConfig, "volume %q must end with a separator", p.point)
	}
	if !p.volume {
		p.point = pathutil.Clean(p.point, 1, "/")
	}
	return nil
}
