package vfs

import (
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
)

// cwdState is the shared current directory. An empty path means unset.
// The epoch moves on every change, including becoming unset.
type cwdState struct {
	mu    sync.Mutex
	path  string
	epoch uint64
}

func (c *cwdState) load() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path, c.epoch
}

func (c *cwdState) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *cwdState) install(path string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = path
	c.epoch++
	return c.epoch
}

// discard unsets the directory if it is still path.
func (c *cwdState) discard(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.path == path {
		c.path = ""
		c.epoch++
	}
}

func (c *cwdState) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = ""
	c.epoch++
}

// Getwd returns the current directory as a normalized path.
//
// When no directory is set yet, every provider implementing core.CwdGetter
// is asked in priority order and the first answer wins. A set directory is
// re-checked with its owner on every call: if the owner now fails, the
// directory becomes unset and the error is returned; if the owner reports
// another directory, that one is installed.
func (w *Worker) Getwd() (*Path, error) {
	cwd, _, err := w.currentDir()
	if err != nil {
		return nil, err
	}
	return normalizedPath(cwd, w.snapshot().Epoch), nil
}

// currentDir returns the normalized current directory and its epoch.
func (w *Worker) currentDir() (string, uint64, error) {
	shared, epoch := w.fs.cwd.load()
	if shared == "" {
		return w.queryCwd()
	}
	if w.cwdEpoch != epoch {
		w.cwd, w.cwdEpoch = shared, epoch
	}
	return w.verifyCwd(w.cwd, w.cwdEpoch)
}

func (w *Worker) queryCwd() (string, uint64, error) {
	var lastErr error
	for _, e := range w.snapshot().Entries {
		getter, ok := e.Provider.(core.CwdGetter)
		if !ok {
			continue
		}
		wd, err := getter.Getwd()
		if err != nil {
			lastErr = err
			continue
		}
		if wd == "" || w.classify(wd).typ != core.PathAbsolute {
			continue
		}
		norm, err := w.normalizeString(wd)
		if err != nil {
			lastErr = err
			continue
		}
		return norm, w.installCwd(norm), nil
	}

	if lastErr == nil {
		lastErr = fs.ErrNotExist
	}
	return "", 0, errors.Wrap(lastErr, errors.CodeNotFound, "no provider reports a current directory")
}

func (w *Worker) verifyCwd(cwd string, epoch uint64) (string, uint64, error) {
	p := normalizedPath(cwd, w.snapshot().Epoch)
	defer p.Close()

	owner, err := w.resolveNormalized(p, cwd)
	if err != nil {
		w.dropCwd(cwd, err)
		return "", 0, err
	}
	getter, ok := owner.(core.CwdGetter)
	if !ok {
		return cwd, epoch, nil
	}

	wd, err := getter.Getwd()
	if err == nil && w.classify(wd).typ != core.PathAbsolute {
		err = &fs.PathError{Op: "getwd", Path: wd, Err: fs.ErrInvalid}
	}
	if err != nil {
		w.dropCwd(cwd, err)
		return "", 0, err
	}
	norm, err := w.normalizeString(wd)
	if err != nil {
		w.dropCwd(cwd, err)
		return "", 0, err
	}
	if norm == cwd {
		return cwd, epoch, nil
	}

	w.fs.logger.Debug("current directory changed outside the vfs",
		slog.String("previous", cwd), slog.String(logKeyPath, norm))
	return norm, w.installCwd(norm), nil
}

func (w *Worker) installCwd(norm string) uint64 {
	epoch := w.fs.cwd.install(norm)
	w.cwd, w.cwdEpoch = norm, epoch
	w.fs.metrics.recordCwdChange()
	w.fs.logger.Debug("current directory set", slog.String(logKeyPath, norm), slog.Uint64("cwd_epoch", epoch))
	return epoch
}

func (w *Worker) dropCwd(cwd string, cause error) {
	w.fs.cwd.discard(cwd)
	w.cwd, w.cwdEpoch = "", 0
	w.fs.logger.Debug("current directory discarded", slog.String(logKeyPath, cwd), slog.Any("error", cause))
}

// Chdir makes p the current directory. The owner's core.Chdirer decides
// when present. Otherwise p must exist, be a directory and be readable,
// and the change is recorded only in the VFS.
func (w *Worker) Chdir(p *Path) error {
	owner, norm, err := w.target(p)
	if err != nil {
		return err
	}

	if chdirer, ok := owner.(core.Chdirer); ok {
		if err := chdirer.Chdir(norm); err != nil {
			return err
		}
	} else if err := w.chdirFallback(owner, norm); err != nil {
		return err
	}

	w.installCwd(norm)
	return nil
}

func (w *Worker) chdirFallback(owner core.Provider, norm string) error {
	stater, ok := owner.(core.Stater)
	if !ok {
		return errUnsupported("chdir", norm, owner)
	}
	info, err := stater.Stat(norm)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: norm, Err: core.ErrNotDir}
	}
	if accessor, ok := owner.(core.Accessor); ok {
		if err := accessor.Access(norm, core.AccessRead); err != nil {
			return err
		}
	}
	return nil
}
