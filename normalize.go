package vfs

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// classification is the result of classifying a path string.
type classification struct {
	typ     core.PathType
	rootLen int
	// volume is the provider whose volume prefix matched, or nil when the
	// native syntax decided.
	volume core.Provider
}

// classify decides the type of s. Volume prefixes of non-native providers
// are tried first, in priority order. Within a provider the longest prefix
// wins, and the first provider with a match decides. Without a match the
// native provider's syntax applies.
func (w *Worker) classify(s string) classification {
	snap := w.snapshot()
	for _, e := range snap.Entries {
		if e.Native {
			continue
		}
		lister, ok := e.Provider.(core.VolumeLister)
		if !ok {
			continue
		}
		best := 0
		for _, v := range lister.Volumes() {
			if len(v) > best && strings.HasPrefix(s, v) {
				best = len(v)
			}
		}
		if best > 0 {
			return classification{typ: core.PathAbsolute, rootLen: best, volume: e.Provider}
		}
	}

	if typer, ok := snap.Native().Provider.(core.PathTyper); ok {
		typ, n := typer.PathType(s)
		return classification{typ: typ, rootLen: n}
	}
	if strings.HasPrefix(s, "/") {
		return classification{typ: core.PathAbsolute, rootLen: 1}
	}
	return classification{typ: core.PathRelative}
}

// toSlash rewrites alternate separators in s to "/" when the native
// provider decided c.
func (w *Worker) toSlash(c classification, s string) string {
	if c.volume != nil {
		return s
	}
	if conv, ok := w.snapshot().Native().Provider.(core.SlashConverter); ok {
		return conv.ToSlash(s)
	}
	return s
}

// separator returns the separator of the provider that decided c.
func (w *Worker) separator(c classification) string {
	if c.volume != nil {
		return core.SeparatorOf(c.volume)
	}
	return core.SeparatorOf(w.snapshot().Native().Provider)
}

// PathType classifies p. A path joined onto a base takes the base's type
// unless its fragment is itself absolute.
func (w *Worker) PathType(p *Path) core.PathType {
	if p.state == stateRelative && !p.fromCwd && p.base != nil {
		if c := w.classify(p.fragment); c.typ == core.PathRelative {
			return w.PathType(p.base)
		}
	}
	return w.classify(p.raw).typ
}

// Normalize returns the normalized absolute form of p, computing it if the
// cached form is missing or was made under another registry epoch.
//
// Normalization runs in two phases. The lexical phase removes "." and ".."
// segments without ever climbing above the root or volume. The
// canonicalization phase hands the string to the native provider's
// Canonicalizer and then to every other provider's in priority order; each
// reports how much of the string is final so the next only looks at the
// rest. Relative paths are joined onto their base and only the appended
// part is walked again.
func (w *Worker) Normalize(p *Path) (string, error) {
	if p.closed {
		return "", errClosedPath
	}
	if p.state == stateRaw {
		if err := w.translate(p); err != nil {
			return "", err
		}
	}

	epoch := w.snapshot().Epoch
	if p.state == stateRelative {
		return w.normalizeRelative(p, epoch)
	}
	if p.state == stateNormalized && p.normEpoch == epoch {
		return p.norm, nil
	}

	p.norm = w.normalizeAbsolute(p.translated)
	p.normEpoch = epoch
	p.state = stateNormalized
	return p.norm, nil
}

// NormalizedPath is Normalize under its operation name.
func (w *Worker) NormalizedPath(p *Path) (string, error) {
	return w.Normalize(p)
}

// TranslatedPath returns p with "~" expanded and, for relative paths, the
// base directory prepended. Unlike NormalizedPath the result may still
// contain "." and ".." segments.
func (w *Worker) TranslatedPath(p *Path) (string, error) {
	if p.closed {
		return "", errClosedPath
	}
	if p.state == stateRaw {
		if err := w.translate(p); err != nil {
			return "", err
		}
	}
	if p.state != stateRelative {
		return p.translated, nil
	}

	if p.fromCwd {
		if err := w.captureCwd(p); err != nil {
			return "", err
		}
	}
	if c := w.classify(p.fragment); c.typ != core.PathRelative {
		frag := NewPath(p.fragment)
		defer frag.Close()
		return w.TranslatedPath(frag)
	}
	base, err := w.TranslatedPath(p.base)
	if err != nil {
		return "", err
	}
	bc := w.classify(base)
	return pathutil.Join(w.separator(bc), base, w.toSlash(bc, p.fragment)), nil
}

// EqualPaths reports whether a and b name the same location. Paths that
// cannot be normalized are only equal to identical strings.
func (w *Worker) EqualPaths(a, b *Path) bool {
	if a == b {
		return true
	}
	na, errA := w.Normalize(a)
	nb, errB := w.Normalize(b)
	if errA != nil || errB != nil {
		return a.raw == b.raw && errA != nil && errB != nil
	}
	return na == nb
}

// equalStrings compares two path strings by location.
func (w *Worker) equalStrings(a, b string) bool {
	if a == b {
		return true
	}
	pa, pb := NewPath(a), NewPath(b)
	defer pa.Close()
	defer pb.Close()
	return w.EqualPaths(pa, pb)
}

// normalizeString normalizes a path given as a string.
func (w *Worker) normalizeString(s string) (string, error) {
	p := NewPath(s)
	defer p.Close()
	return w.Normalize(p)
}

// translate moves a raw path into stateTranslated or stateRelative.
func (w *Worker) translate(p *Path) error {
	s := p.raw
	if s == "" {
		p.translated = ""
		p.state = stateTranslated
		return nil
	}

	c := w.classify(s)
	if c.volume == nil && s[0] == '~' {
		expanded, err := w.expandTilde(s)
		if err != nil {
			return err
		}
		s = expanded
		c = w.classify(s)
	}
	if slashed := w.toSlash(c, s); slashed != s {
		s = slashed
		c = w.classify(s)
	}

	switch c.typ {
	case core.PathRelative:
		p.state = stateRelative
		p.fragment = s
		p.fromCwd = true
	case core.PathVolumeRelative:
		abs, err := w.anchorVolume(s, c)
		if err != nil {
			return err
		}
		p.translated = abs
		p.state = stateTranslated
	default:
		p.translated = s
		p.state = stateTranslated
	}
	return nil
}

// expandTilde replaces a leading "~" or "~user" with a home directory.
func (w *Worker) expandTilde(s string) (string, error) {
	name, rest := s[1:], ""
	if i := strings.IndexAny(s, `/\`); i >= 0 {
		name, rest = s[1:i], s[i:]
	}

	home, err := w.fs.home(name)
	if err == nil && home == "" {
		err = fs.ErrNotExist
	}
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeNotFound, "cannot expand home directory",
			map[string]interface{}{"path": s, "user": name})
	}
	return filepath.ToSlash(home) + rest, nil
}

// anchorVolume turns a volume-relative path into an absolute one using the
// volume of the current directory.
func (w *Worker) anchorVolume(s string, c classification) (string, error) {
	cwd, _, err := w.currentDir()
	if err != nil {
		return "", err
	}
	cc := w.classify(cwd)
	if cc.typ != core.PathAbsolute || cc.rootLen == 0 {
		return s, nil
	}

	vol := strings.TrimRight(cwd[:cc.rootLen], `/\`)
	if s[0] == '/' || s[0] == '\\' {
		return vol + s, nil
	}

	// Drive-relative, e.g. "C:x".
	drive := s[:c.rootLen]
	if strings.EqualFold(vol, drive) {
		return pathutil.Join("/", cwd, s[c.rootLen:]), nil
	}
	return drive + "/" + s[c.rootLen:], nil
}

// normalizeAbsolute runs both phases over an absolute string.
func (w *Worker) normalizeAbsolute(s string) string {
	if s == "" {
		return ""
	}
	c := w.classify(s)
	cleaned := pathutil.Clean(s, c.rootLen, w.separator(c))
	return w.canonicalize(cleaned, c.rootLen)
}

// normalizeRelative normalizes base + fragment, starting the
// canonicalization phase where the result departs from the base.
func (w *Worker) normalizeRelative(p *Path, epoch uint64) (string, error) {
	if p.fromCwd {
		if err := w.captureCwd(p); err != nil {
			return "", err
		}
	}
	baseNorm, err := w.Normalize(p.base)
	if err != nil {
		return "", err
	}
	if p.normEpoch == epoch && p.baseNorm == baseNorm {
		return p.norm, nil
	}

	var norm string
	if c := w.classify(p.fragment); c.typ != core.PathRelative {
		norm, err = w.normalizeString(p.fragment)
		if err != nil {
			return "", err
		}
	} else {
		bc := w.classify(baseNorm)
		sep := w.separator(bc)
		frag := w.toSlash(bc, p.fragment)
		cleaned := pathutil.Clean(pathutil.Join(sep, baseNorm, frag), bc.rootLen, sep)
		start := pathutil.CommonPrefixLen(baseNorm, cleaned, bc.rootLen, sep)
		norm = w.canonicalize(cleaned, start)
		w.fs.metrics.recordIncrementalNormalization()
	}

	p.norm = norm
	p.baseNorm = baseNorm
	p.normEpoch = epoch
	return norm, nil
}

// captureCwd makes the current directory the base of a cwd-relative path,
// replacing a base captured before the directory last changed.
func (w *Worker) captureCwd(p *Path) error {
	if p.base != nil && p.cwdEpoch == w.fs.cwd.currentEpoch() {
		return nil
	}
	cwd, cwdEpoch, err := w.currentDir()
	if err != nil {
		return err
	}
	if p.base != nil {
		p.base.Close()
	}
	p.base = normalizedPath(cwd, w.snapshot().Epoch)
	p.cwdEpoch = cwdEpoch
	p.normEpoch = 0
	return nil
}

// canonicalize runs the canonicalization hooks, native first.
func (w *Worker) canonicalize(s string, start int) string {
	snap := w.snapshot()
	out, done := s, start

	if c, ok := snap.Native().Provider.(core.Canonicalizer); ok {
		out, done = c.Canonicalize(out, done)
	}
	for _, e := range snap.Entries[:len(snap.Entries)-1] {
		c, ok := e.Provider.(core.Canonicalizer)
		if !ok {
			continue
		}
		done = min(max(done, 0), len(out))
		out, done = c.Canonicalize(out, done)
	}
	return out
}

// Split breaks p into its root followed by its segments. Segments that
// would read as a home directory are prefixed with "./" so Join keeps them
// relative.
func (w *Worker) Split(p *Path) []string {
	s := p.raw
	if s == "" {
		return nil
	}
	c := w.classify(s)
	sep := w.separator(c)

	parts := pathutil.Split(s, c.rootLen, sep)
	for i := 1; i < len(parts); i++ {
		if parts[i][0] == '~' {
			parts[i] = "./" + parts[i]
		}
	}
	return parts
}

// Join combines elements into one path. An element that is not relative
// discards everything before it.
func (w *Worker) Join(elems ...string) *Path {
	var out string
	for _, e := range elems {
		if e == "" {
			continue
		}
		c := w.classify(e)
		if c.typ != core.PathRelative || out == "" {
			out = e
			continue
		}
		out = pathutil.Join(w.separator(w.classify(out)), out, e)
	}
	return NewPath(out)
}
