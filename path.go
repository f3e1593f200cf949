package vfs

import (
	"github.com/jmgilman/go/vfs/core"
)

// pathState tags which form a Path is in.
type pathState int

const (
	// stateRaw holds only the string the path was created from.
	stateRaw pathState = iota
	// stateTranslated holds an absolute string with "~" expanded.
	stateTranslated
	// stateNormalized holds an absolute, normalized string.
	stateNormalized
	// stateRelative holds a fragment interpreted against a base directory.
	stateRelative
)

func (s pathState) String() string {
	switch s {
	case stateRaw:
		return "raw"
	case stateTranslated:
		return "translated"
	case stateNormalized:
		return "normalized"
	case stateRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// Path is a filesystem path with its derived forms cached: the translated
// string, the normalized string and the owning provider. The caches are
// filled lazily by a Worker and invalidated by the registry epoch.
//
// A Path is not safe for concurrent use. Close releases the registry pin
// and provider representation it holds.
type Path struct {
	state pathState
	raw   string

	// translated is the absolute form once "~" and volume-relative prefixes
	// are expanded. Set in stateTranslated and stateNormalized.
	translated string

	// norm is valid while normEpoch matches the registry epoch.
	norm      string
	normEpoch uint64

	// stateRelative only.
	base     *Path
	baseNorm string
	fragment string
	fromCwd  bool
	cwdEpoch uint64

	// Resolution, valid while epoch matches the registry epoch and the
	// path still normalizes to resolved.
	reg      *Registry
	ref      EntryRef
	epoch    uint64
	resolved string
	owner    core.Provider
	rep      any
	repOwner core.Provider

	closed bool
}

// NewPath creates a path from a raw string. Nothing is computed until the
// path is used.
func NewPath(raw string) *Path {
	return &Path{state: stateRaw, raw: raw}
}

// JoinPath creates a path for fragment interpreted against base. base is
// duplicated, so the caller keeps ownership of its own value. Normalizing
// the result only walks the part of the string that fragment adds.
func JoinPath(base *Path, fragment string) *Path {
	return &Path{
		state:    stateRelative,
		raw:      fragment,
		base:     base.Dup(),
		fragment: fragment,
	}
}

// normalizedPath creates a path already in normalized form.
func normalizedPath(norm string, epoch uint64) *Path {
	return &Path{
		state:      stateNormalized,
		raw:        norm,
		translated: norm,
		norm:       norm,
		normEpoch:  epoch,
	}
}

// String returns the raw string the path was created from.
func (p *Path) String() string {
	return p.raw
}

// IsClosed reports whether Close has been called.
func (p *Path) IsClosed() bool {
	return p.closed
}

// Dup returns an independent copy of p. The copy takes its own registry
// pin, and its own representation when the owner can duplicate one.
func (p *Path) Dup() *Path {
	d := &Path{
		state:      p.state,
		raw:        p.raw,
		translated: p.translated,
		norm:       p.norm,
		normEpoch:  p.normEpoch,
		baseNorm:   p.baseNorm,
		fragment:   p.fragment,
		fromCwd:    p.fromCwd,
		cwdEpoch:   p.cwdEpoch,
		closed:     p.closed,
	}
	if p.base != nil {
		d.base = p.base.Dup()
	}
	if p.reg != nil && p.reg.pin(p.ref, false) {
		d.reg = p.reg
		d.ref = p.ref
		d.epoch = p.epoch
		d.owner = p.owner
		if p.rep != nil {
			if duper, ok := p.repOwner.(core.RepDuper); ok {
				d.rep = duper.DupRep(p.rep)
				d.repOwner = p.repOwner
			}
		}
	}
	return d
}

// Close releases the path's resources: the provider representation first,
// then the registry pin, then the cached strings, then the base directory.
// Closing twice is a no-op.
func (p *Path) Close() {
	if p.closed {
		return
	}
	p.release()
	p.translated = ""
	p.norm = ""
	p.baseNorm = ""
	p.normEpoch = 0
	if p.base != nil {
		p.base.Close()
		p.base = nil
	}
	p.closed = true
}

// release drops the resolution: representation, then registry pin.
func (p *Path) release() {
	if p.rep != nil {
		if freer, ok := p.repOwner.(core.RepFreer); ok {
			freer.FreeRep(p.rep)
		}
		p.rep = nil
		p.repOwner = nil
	}
	if p.reg != nil {
		p.reg.unpin(p.ref)
		p.reg = nil
	}
	p.ref = EntryRef{}
	p.epoch = 0
	p.resolved = ""
	p.owner = nil
}

// resolveTo records a fresh resolution of norm. The new entry must already
// be pinned by the caller.
func (p *Path) resolveTo(reg *Registry, e SnapshotEntry, epoch uint64, norm string, rep any) {
	p.release()
	p.reg = reg
	p.ref = e.Ref
	p.epoch = epoch
	p.resolved = norm
	p.owner = e.Provider
	if rep != nil {
		p.rep = rep
		p.repOwner = e.Provider
	}
}
