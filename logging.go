package vfs

import (
	"io"
	"log/slog"
)

// Log attribute keys shared by every event the package emits.
const (
	logKeyPath     = "path"
	logKeyProvider = "provider"
	logKeyEpoch    = "epoch"
	logKeyOp       = "op"
)

func discardLogger() *slog.Logger {
	// slog.DiscardHandler needs Go 1.24; this is the pre-1.24 equivalent.
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// providerAttr names a provider in log output.
func providerAttr(p interface{ Name() string }) slog.Attr {
	if p == nil {
		return slog.String(logKeyProvider, "")
	}
	return slog.String(logKeyProvider, p.Name())
}
