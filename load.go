package vfs

import (
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
)

// tempPattern prefixes temporary copies made for loading.
const tempPattern = "vfsload"

// LoadHandle records one loaded file. Pass it to Unload to release it.
type LoadHandle struct {
	// ID identifies the load in logs.
	ID uuid.UUID
	// Path is the normalized path that was loaded.
	Path string
	// TempPath is the native copy the code was loaded from, or "" when
	// the owner loaded the file itself.
	TempPath string
	// Handles holds the resolved symbols, in the order they were requested.
	Handles []any

	unload    func() error
	tempOwner core.Provider
	done      bool
}

// Diverted reports whether the load went through a temporary native copy.
func (h *LoadHandle) Diverted() bool {
	return h.TempPath != ""
}

// LoadFile loads code from p and resolves symbols in it.
//
// An owner implementing core.Loader loads the file itself. Otherwise the
// file is copied to a temporary file on the native provider, which gets the
// source's modification time, and the native provider loads the copy.
func (w *Worker) LoadFile(p *Path, symbols []string) (*LoadHandle, error) {
	owner, norm, err := w.target(p)
	if err != nil {
		return nil, err
	}
	snap := w.snapshot()
	native := snap.Native()

	if loader, ok := owner.(core.Loader); ok {
		handles, unload, err := loader.Load(norm, symbols)
		if err != nil {
			return nil, err
		}
		return &LoadHandle{ID: uuid.New(), Path: norm, Handles: handles, unload: unload}, nil
	}
	if p.ref == native.Ref {
		return nil, errUnsupported("load", norm, owner)
	}

	return w.loadViaTemp(p, owner, norm, native.Provider, symbols)
}

func (w *Worker) loadViaTemp(p *Path, owner core.Provider, norm string, native core.Provider, symbols []string) (*LoadHandle, error) {
	tempFiler, ok := native.(core.TempFiler)
	if !ok {
		return nil, errUnsupported("createtemp", norm, native)
	}
	loader, ok := native.(core.Loader)
	if !ok {
		return nil, errUnsupported("load", norm, native)
	}
	deleter, _ := native.(core.FileDeleter)

	src, err := w.OpenForReading(p)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	info, statErr := src.Stat()

	tmp, tmpPath, err := tempFiler.CreateTemp(tempPattern)
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		if deleter != nil {
			_ = deleter.DeleteFile(tmpPath)
		}
	}

	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return nil, errors.WrapWithContext(err, errors.CodeInternal, "failed to copy file for loading",
			map[string]interface{}{logKeyPath: norm, "temp": tmpPath})
	}

	if utimer, ok := native.(core.Utimer); ok && statErr == nil {
		if err := utimer.Utime(tmpPath, info.ModTime(), info.ModTime()); err != nil {
			w.fs.logger.Debug("could not copy modification time", slog.String("temp", tmpPath), slog.Any("error", err))
		}
	}

	handles, unload, err := loader.Load(tmpPath, symbols)
	if err != nil {
		cleanup()
		return nil, err
	}

	h := &LoadHandle{
		ID:        uuid.New(),
		Path:      norm,
		TempPath:  tmpPath,
		Handles:   handles,
		unload:    unload,
		tempOwner: native,
	}
	w.fs.metrics.recordLoadFallback()
	w.fs.logger.Info("loaded file through temporary native copy",
		slog.String("id", h.ID.String()),
		slog.String(logKeyPath, norm),
		providerAttr(owner),
		slog.String("temp", tmpPath),
		slog.String("size", humanize.Bytes(uint64(max(n, 0)))),
	)
	return h, nil
}

// Unload releases a loaded file: the loader's unload runs first and the
// temporary copy, if any, is deleted afterwards. Unloading twice is a
// no-op.
func (w *Worker) Unload(h *LoadHandle) error {
	if h == nil || h.done {
		return nil
	}
	h.done = true

	var unloadErr, deleteErr error
	if h.unload != nil {
		unloadErr = h.unload()
	}
	if h.TempPath != "" {
		if deleter, ok := h.tempOwner.(core.FileDeleter); ok {
			deleteErr = deleter.DeleteFile(h.TempPath)
		}
		w.fs.logger.Debug("removed temporary load copy", slog.String("id", h.ID.String()),
			slog.String("temp", h.TempPath), slog.Any("error", deleteErr))
	}
	return stderrors.Join(unloadErr, deleteErr)
}
