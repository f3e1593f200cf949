package vfs

import (
	"log/slog"
	"os"
	"os/user"

	"github.com/jmgilman/go/vfs/core"
)

// HomeResolver returns the home directory of the named user. An empty name
// means the current user. It is used to expand "~" and "~user" prefixes.
type HomeResolver func(username string) (string, error)

// Option configures an FS.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	native  core.Provider
	home    HomeResolver
	metrics *Metrics
}

// WithLogger sets the logger used for registry, resolution and fallback
// events. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNative replaces the default native provider. The provider becomes the
// permanent tail of the registry.
func WithNative(p core.Provider) Option {
	return func(o *options) {
		o.native = p
	}
}

// WithHomeResolver replaces the lookup used for tilde expansion.
func WithHomeResolver(r HomeResolver) Option {
	return func(o *options) {
		o.home = r
	}
}

// WithMetrics records counters into m instead of a private instance.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func defaultHome(username string) (string, error) {
	if username == "" {
		return os.UserHomeDir()
	}
	u, err := user.Lookup(username)
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}
