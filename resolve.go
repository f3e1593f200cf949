package vfs

import (
	"log/slog"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
)

// maxResolveAttempts bounds how often resolution restarts because the
// registry changed between taking a snapshot and pinning an entry.
const maxResolveAttempts = 8

// Resolve returns the provider that owns p. The owner cached in p is reused
// while the registry epoch is unchanged and p still normalizes to the string
// it was resolved for; otherwise every provider is asked,
// in priority order, whether it claims the normalized path. The native
// provider comes last and claims everything except "".
func (w *Worker) Resolve(p *Path) (core.Provider, error) {
	norm, err := w.Normalize(p)
	if err != nil {
		return nil, err
	}
	return w.resolveNormalized(p, norm)
}

func (w *Worker) resolveNormalized(p *Path, norm string) (core.Provider, error) {
	// An unchanged epoch means no entry has been unregistered since p was
	// resolved, so the cached entry is still live. A cwd-relative path can
	// normalize differently after Chdir without the epoch moving.
	if p.reg != nil && p.epoch == w.snapshot().Epoch && p.resolved == norm {
		w.fs.metrics.recordResolutionHit()
		return p.owner, nil
	}
	w.fs.metrics.recordResolution()

	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		snap := w.snapshot()
		stale := false
		for _, e := range snap.Entries {
			claimer, ok := e.Provider.(core.Claimer)
			if !ok {
				continue
			}
			rep, ok := claimer.ClaimPath(norm)
			if !ok {
				continue
			}
			if !w.fs.reg.pin(e.Ref, true) {
				if freer, ok := e.Provider.(core.RepFreer); ok && rep != nil {
					freer.FreeRep(rep)
				}
				stale = true
				break
			}
			p.resolveTo(w.fs.reg, e, snap.Epoch, norm, rep)
			return e.Provider, nil
		}
		if !stale {
			w.fs.logger.Debug("no provider claims path", slog.String(logKeyPath, norm))
			return nil, errNoOwner("resolve", norm)
		}
		w.fs.logger.Debug("registry changed during resolution, retrying", slog.String(logKeyPath, norm))
	}
	return nil, errors.WithContext(
		errors.New(errors.CodeStaleReference, "registry kept changing during resolution"),
		logKeyPath, norm,
	)
}

// target normalizes and resolves p for an operation.
func (w *Worker) target(p *Path) (core.Provider, string, error) {
	norm, err := w.Normalize(p)
	if err != nil {
		return nil, "", err
	}
	owner, err := w.resolveNormalized(p, norm)
	if err != nil {
		return nil, norm, err
	}
	return owner, norm, nil
}

// InternalRep returns the owner's representation of p, creating it through
// core.RepCreator when the claim did not produce one.
func (w *Worker) InternalRep(p *Path) (any, error) {
	owner, norm, err := w.target(p)
	if err != nil {
		return nil, err
	}
	if p.rep != nil {
		return p.rep, nil
	}
	creator, ok := owner.(core.RepCreator)
	if !ok {
		return nil, errUnsupported("createrep", norm, owner)
	}
	rep, err := creator.CreateRep(norm)
	if err != nil {
		return nil, err
	}
	p.rep = rep
	p.repOwner = owner
	return rep, nil
}

// PathFromRep builds a normalized path from a representation made by
// owner. The caller keeps its own representation.
func (w *Worker) PathFromRep(owner core.Provider, rep any) (*Path, error) {
	pather, ok := owner.(core.RepPather)
	if !ok {
		return nil, errUnsupported("reppath", "", owner)
	}
	s, err := pather.RepPath(rep)
	if err != nil {
		return nil, err
	}
	p := normalizedPath(s, w.snapshot().Epoch)
	if duper, ok := owner.(core.RepDuper); ok {
		p.rep = duper.DupRep(rep)
		p.repOwner = owner
	}
	return p, nil
}
