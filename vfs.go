package vfs

import (
	"log/slog"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
	"github.com/jmgilman/go/vfs/provider/native"
)

// FS owns the provider registry and the shared current directory. It is
// safe for concurrent use; per-goroutine work goes through a Worker.
type FS struct {
	reg     *Registry
	cwd     cwdState
	logger  *slog.Logger
	metrics *Metrics
	home    HomeResolver
}

// New creates an FS with the native provider installed as the permanent
// tail of the registry.
func New(opts ...Option) (*FS, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = discardLogger()
	}
	if o.metrics == nil {
		o.metrics = NewMetrics()
	}
	if o.home == nil {
		o.home = defaultHome
	}
	if o.native == nil {
		p, err := native.New()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to create native provider")
		}
		o.native = p
	}
	if _, ok := o.native.(core.Claimer); !ok {
		return nil, errors.Newf(errors.CodeInvalidInput, "native provider %q cannot claim paths", o.native.Name())
	}

	return &FS{
		reg:     newRegistry(o.native, o.logger, o.metrics),
		logger:  o.logger,
		metrics: o.metrics,
		home:    o.home,
	}, nil
}

// Register mounts p ahead of every provider registered before it.
func (f *FS) Register(p core.Provider) (EntryRef, error) {
	return f.reg.Register(p)
}

// Unregister removes p. Paths already resolved to p keep its registry
// entry alive until they are closed or re-resolved.
func (f *FS) Unregister(p core.Provider) error {
	return f.reg.Unregister(p)
}

// Registry exposes the provider registry.
func (f *FS) Registry() *Registry {
	return f.reg
}

// Native returns the native provider.
func (f *FS) Native() core.Provider {
	return f.reg.Native()
}

// Metrics returns the counters the FS records into.
func (f *FS) Metrics() *Metrics {
	return f.metrics
}

// Shutdown unregisters every non-native provider and forgets the current
// directory. Workers created earlier observe the change through the epoch.
func (f *FS) Shutdown() {
	f.reg.shutdown()
	f.cwd.reset()
	f.logger.Debug("vfs shut down")
}
