package vfs

import (
	"log/slog"

	"github.com/jmgilman/go/vfs/core"
)

// MatchInDirectory lists the entries of dir whose names match pattern and
// whose type passes filter. The owner of dir produces the base listing.
// Mount points that other providers place directly inside dir are then
// merged in as directories: added when the filter admits directories and
// the listing lacks them, and removed from the listing when it does not.
func (w *Worker) MatchInDirectory(dir *Path, pattern string, filter core.TypeFilter) ([]string, error) {
	owner, norm, err := w.target(dir)
	if err != nil {
		return nil, err
	}
	matcher, ok := owner.(core.Matcher)
	if !ok {
		return nil, errUnsupported("match", norm, owner)
	}
	base, err := matcher.Match(norm, pattern, filter)
	if err != nil {
		return nil, err
	}

	mounts := w.mountsIn(dir.ref, norm, pattern)
	if len(mounts) == 0 {
		return base, nil
	}
	if filter.AdmitsDirs() {
		return w.addMounts(base, mounts), nil
	}
	return w.removeMounts(base, mounts), nil
}

// mountsIn collects the mount points other non-native providers have
// directly inside dir.
func (w *Worker) mountsIn(owner EntryRef, dir, pattern string) []string {
	var out []string
	for _, e := range w.snapshot().Entries {
		if e.Native || e.Ref == owner {
			continue
		}
		lister, ok := e.Provider.(core.MountLister)
		if !ok {
			continue
		}
		found, err := lister.MountsIn(dir, pattern)
		if err != nil {
			w.fs.logger.Debug("mount listing failed", providerAttr(e.Provider),
				slog.String(logKeyPath, dir), slog.Any("error", err))
			continue
		}
		out = append(out, found...)
	}
	return out
}

func (w *Worker) addMounts(base, mounts []string) []string {
	out := base
	for _, m := range mounts {
		if !w.containsPath(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func (w *Worker) removeMounts(base, mounts []string) []string {
	out := base[:0:0]
	for _, b := range base {
		if !w.containsPath(mounts, b) {
			out = append(out, b)
		}
	}
	return out
}

func (w *Worker) containsPath(list []string, p string) bool {
	for _, q := range list {
		if w.equalStrings(q, p) {
			return true
		}
	}
	return false
}
