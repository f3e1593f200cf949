package vfs

import (
	"io"
	"io/fs"
	"log/slog"

	"github.com/jmgilman/go/vfs/core"
)

// pair resolves both paths of a binary operation. It fails with
// errors.CodeCrossDevice unless they belong to the same registry entry.
func (w *Worker) pair(op string, src, dst *Path) (core.Provider, string, string, error) {
	from, srcNorm, err := w.target(src)
	if err != nil {
		return nil, "", "", err
	}
	to, dstNorm, err := w.target(dst)
	if err != nil {
		return nil, "", "", err
	}
	if src.ref != dst.ref {
		w.fs.metrics.recordCrossProvider()
		w.fs.logger.Debug("cross-provider operation rejected", slog.String(logKeyOp, op),
			slog.String("source", srcNorm), slog.String("destination", dstNorm))
		return nil, "", "", errCrossDevice(op, srcNorm, dstNorm, from, to)
	}
	return from, srcNorm, dstNorm, nil
}

// Rename renames src to dst. Both must belong to the same provider and the
// provider must implement core.Renamer; otherwise the rename fails with
// errors.CodeCrossDevice and nothing is touched.
func (w *Worker) Rename(src, dst *Path) error {
	owner, from, to, err := w.pair("rename", src, dst)
	if err != nil {
		return err
	}
	renamer, ok := owner.(core.Renamer)
	if !ok {
		return errCrossDevice("rename", from, to, owner, owner)
	}
	return renamer.Rename(from, to)
}

// CopyFile copies the file src to dst within one provider.
func (w *Worker) CopyFile(src, dst *Path) error {
	owner, from, to, err := w.pair("copy", src, dst)
	if err != nil {
		return err
	}
	copier, ok := owner.(core.Copier)
	if !ok {
		return errCrossDevice("copy", from, to, owner, owner)
	}
	return copier.CopyFile(from, to)
}

// CopyDirectory copies the tree src to dst within one provider. On failure
// the error carries the path that could not be copied; see OffendingPath.
func (w *Worker) CopyDirectory(src, dst *Path) error {
	owner, from, to, err := w.pair("copydir", src, dst)
	if err != nil {
		return err
	}
	copier, ok := owner.(core.DirCopier)
	if !ok {
		return errCrossDevice("copydir", from, to, owner, owner)
	}
	offending, err := copier.CopyDir(from, to)
	if err != nil {
		if offending == "" {
			offending = from
		}
		return withOffending(err, offending)
	}
	return nil
}

// CopyAcross streams the contents of the file src into dst, creating or
// truncating dst. Unlike CopyFile it works between any two providers that
// can open files. It returns the number of bytes copied.
func (w *Worker) CopyAcross(src, dst *Path) (int64, error) {
	in, err := w.OpenForReading(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	var perm fs.FileMode = 0o644
	if info, err := in.Stat(); err == nil && info.Mode().Perm() != 0 {
		perm = info.Mode().Perm()
	}

	out, err := w.OpenForWriting(dst, perm)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
