package vfs

import (
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// Stat returns metadata for p, following symbolic links.
func (w *Worker) Stat(p *Path) (fs.FileInfo, error) {
	owner, norm, err := w.target(p)
	if err != nil {
		return nil, err
	}
	stater, ok := owner.(core.Stater)
	if !ok {
		return nil, errUnsupported("stat", norm, owner)
	}
	return stater.Stat(norm)
}

// Lstat returns metadata for p without following a final symbolic link.
// Providers without core.Lstater are asked for Stat instead.
func (w *Worker) Lstat(p *Path) (fs.FileInfo, error) {
	owner, norm, err := w.target(p)
	if err != nil {
		return nil, err
	}
	if lstater, ok := owner.(core.Lstater); ok {
		return lstater.Lstat(norm)
	}
	stater, ok := owner.(core.Stater)
	if !ok {
		return nil, errUnsupported("lstat", norm, owner)
	}
	return stater.Stat(norm)
}

// Access checks whether p may be accessed in mode.
func (w *Worker) Access(p *Path, mode core.AccessMode) error {
	owner, norm, err := w.target(p)
	if err != nil {
		return err
	}
	accessor, ok := owner.(core.Accessor)
	if !ok {
		return errUnsupported("access", norm, owner)
	}
	return accessor.Access(norm, mode)
}

// Exists reports whether p names something. The empty path never exists.
func (w *Worker) Exists(p *Path) bool {
	owner, norm, err := w.target(p)
	if err != nil {
		return false
	}
	if accessor, ok := owner.(core.Accessor); ok {
		return accessor.Access(norm, core.AccessExists) == nil
	}
	if stater, ok := owner.(core.Stater); ok {
		_, err := stater.Stat(norm)
		return err == nil
	}
	return false
}

func (w *Worker) open(op string, p *Path, flag int, perm fs.FileMode) (core.File, error) {
	owner, norm, err := w.target(p)
	if err != nil {
		return nil, err
	}
	opener, ok := owner.(core.Opener)
	if !ok {
		return nil, errUnsupported(op, norm, owner)
	}
	return opener.OpenFile(norm, flag, perm)
}

// OpenForReading opens p read-only.
func (w *Worker) OpenForReading(p *Path) (core.File, error) {
	return w.open("open", p, os.O_RDONLY, 0)
}

// OpenForWriting creates or truncates p and opens it write-only. perm
// applies when the file is created.
func (w *Worker) OpenForWriting(p *Path, perm fs.FileMode) (core.File, error) {
	return w.open("open", p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

// OpenForAppending opens p for writing at its end, creating it if needed.
func (w *Worker) OpenForAppending(p *Path, perm fs.FileMode) (core.File, error) {
	return w.open("open", p, os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
}

// CreateDirectory creates the single directory p.
func (w *Worker) CreateDirectory(p *Path) error {
	owner, norm, err := w.target(p)
	if err != nil {
		return err
	}
	maker, ok := owner.(core.DirMaker)
	if !ok {
		return errUnsupported("mkdir", norm, owner)
	}
	return maker.Mkdir(norm, 0o755)
}

// RemoveDirectory removes the directory p. A recursive removal first moves
// the current directory to p's parent if it lies inside p. On failure the
// error carries the path that could not be removed; see OffendingPath.
func (w *Worker) RemoveDirectory(p *Path, recursive bool) error {
	owner, norm, err := w.target(p)
	if err != nil {
		return err
	}
	remover, ok := owner.(core.DirRemover)
	if !ok {
		return errUnsupported("rmdir", norm, owner)
	}

	if recursive {
		w.leaveDirectory(norm)
	}

	offending, err := remover.RemoveDir(norm, recursive)
	if err != nil {
		if offending == "" {
			offending = norm
		}
		return withOffending(err, offending)
	}
	return nil
}

// leaveDirectory changes to the parent of dir when the current directory
// lies inside it. Failure is logged and otherwise ignored; the removal
// itself reports any real problem.
func (w *Worker) leaveDirectory(dir string) {
	cwd, _, err := w.currentDir()
	if err != nil {
		return
	}
	c := w.classify(dir)
	sep := w.separator(c)
	if !pathutil.HasPrefix(cwd, dir, sep) {
		return
	}

	parent := NewPath(pathutil.Parent(dir, c.rootLen, sep))
	defer parent.Close()
	if err := w.Chdir(parent); err != nil {
		w.fs.logger.Debug("could not leave directory before removal",
			slog.String(logKeyPath, dir), slog.Any("error", err))
	}
}

// DeleteFile deletes the file p.
func (w *Worker) DeleteFile(p *Path) error {
	owner, norm, err := w.target(p)
	if err != nil {
		return err
	}
	deleter, ok := owner.(core.FileDeleter)
	if !ok {
		return errUnsupported("delete", norm, owner)
	}
	return deleter.DeleteFile(norm)
}

// Utime sets the access and modification times of p.
func (w *Worker) Utime(p *Path, atime, mtime time.Time) error {
	owner, norm, err := w.target(p)
	if err != nil {
		return err
	}
	utimer, ok := owner.(core.Utimer)
	if !ok {
		return errUnsupported("utime", norm, owner)
	}
	return utimer.Utime(norm, atime, mtime)
}

// Link creates a link at p pointing at target. The provider owning p
// decides how to store target.
func (w *Worker) Link(p, target *Path, kind core.LinkKind) error {
	owner, norm, err := w.target(p)
	if err != nil {
		return err
	}
	linker, ok := owner.(core.Linker)
	if !ok {
		return errUnsupported("link", norm, owner)
	}
	to, err := w.Normalize(target)
	if err != nil {
		return err
	}
	return linker.Link(norm, to, kind)
}

func (w *Worker) attrs(p *Path) (core.AttrProvider, string, error) {
	owner, norm, err := w.target(p)
	if err != nil {
		return nil, "", err
	}
	attrs, ok := owner.(core.AttrProvider)
	if !ok {
		return nil, "", errUnsupported("attrs", norm, owner)
	}
	return attrs, norm, nil
}

// FileAttrNames lists the attributes the owner of p exposes.
func (w *Worker) FileAttrNames(p *Path) ([]string, error) {
	attrs, norm, err := w.attrs(p)
	if err != nil {
		return nil, err
	}
	return attrs.AttrNames(norm)
}

// FileAttr returns one attribute of p.
func (w *Worker) FileAttr(p *Path, name string) (string, error) {
	attrs, norm, err := w.attrs(p)
	if err != nil {
		return "", err
	}
	return attrs.Attr(norm, name)
}

// SetFileAttr sets one attribute of p.
func (w *Worker) SetFileAttr(p *Path, name, value string) error {
	attrs, norm, err := w.attrs(p)
	if err != nil {
		return err
	}
	return attrs.SetAttr(norm, name, value)
}

// ListVolumes returns the volumes of every provider in priority order,
// without duplicates.
func (w *Worker) ListVolumes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range w.snapshot().Entries {
		lister, ok := e.Provider.(core.VolumeLister)
		if !ok {
			continue
		}
		for _, v := range lister.Volumes() {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
