package vfs

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
)

// EntryRef identifies a registry entry. It is a weak reference: once the
// entry's slot is reclaimed the ref stops resolving, even if the slot is
// reused by a later registration. The zero EntryRef refers to nothing.
type EntryRef struct {
	index int
	gen   uint64
}

// Valid reports whether r was issued by a registry.
func (r EntryRef) Valid() bool {
	return r.gen != 0
}

type entry struct {
	provider   core.Provider
	name       string
	registered bool
	// pins counts paths resolved to the entry, plus one while registered.
	pins int
	gen  uint64
}

func (e *entry) live() bool {
	return e.pins > 0
}

// SnapshotEntry is one provider in a Snapshot.
type SnapshotEntry struct {
	Ref      EntryRef
	Provider core.Provider
	Native   bool
}

// Snapshot is the provider list in priority order at one epoch. The native
// provider is always the last entry.
type Snapshot struct {
	Epoch   uint64
	Entries []SnapshotEntry
}

// Native returns the native provider's entry.
func (s Snapshot) Native() SnapshotEntry {
	return s.Entries[len(s.Entries)-1]
}

// RegistryStats describes arena usage.
type RegistryStats struct {
	// Registered is the number of providers currently in the list.
	Registered int
	// Live is the number of slots holding an entry, registered or pinned.
	Live int
	// Reclaimed is the number of free slots waiting for reuse.
	Reclaimed int
}

// Registry is the ordered set of mounted providers. New registrations go
// to the head of the list and the native provider is the fixed tail.
//
// The mutex guards the arena and the order. The epoch is written under the
// mutex and read atomically.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	free    []int
	order   []int
	native  int
	epoch   atomic.Uint64
	logger  *slog.Logger
	metrics *Metrics
}

func newRegistry(native core.Provider, logger *slog.Logger, metrics *Metrics) *Registry {
	r := &Registry{
		entries: []entry{{
			provider:   native,
			name:       native.Name(),
			registered: true,
			pins:       1,
			gen:        1,
		}},
		order:   []int{0},
		native:  0,
		logger:  logger,
		metrics: metrics,
	}
	r.epoch.Store(1)
	return r
}

// Epoch returns the current registry epoch.
func (r *Registry) Epoch() uint64 {
	return r.epoch.Load()
}

// bumpLocked advances the epoch. r.mu must be held.
func (r *Registry) bumpLocked() uint64 {
	r.metrics.recordEpochBump()
	return r.epoch.Add(1)
}

// Register inserts p at the head of the list, ahead of every provider
// registered before it. p must be comparable so Unregister can find it
// again.
func (r *Registry) Register(p core.Provider) (EntryRef, error) {
	if p == nil {
		return EntryRef{}, errors.New(errors.CodeInvalidInput, "provider is nil")
	}
	if !isComparable(p) {
		return EntryRef{}, errors.WithContext(
			errors.Newf(errors.CodeInvalidInput, "provider %q is not comparable; register a pointer", p.Name()),
			logKeyProvider, p.Name(),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.findLocked(p); idx >= 0 {
		return EntryRef{}, errors.WithContext(
			errors.Newf(errors.CodeAlreadyExists, "provider %q is already registered", p.Name()),
			logKeyProvider, p.Name(),
		)
	}

	var idx int
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.entries = append(r.entries, entry{})
		idx = len(r.entries) - 1
	}

	e := &r.entries[idx]
	e.provider = p
	e.name = p.Name()
	e.registered = true
	e.pins = 1
	e.gen++

	r.order = append([]int{idx}, r.order...)
	epoch := r.bumpLocked()

	r.logger.Debug("provider registered", providerAttr(p), slog.Uint64(logKeyEpoch, epoch), slog.Int("slot", idx))
	return EntryRef{index: idx, gen: e.gen}, nil
}

// Unregister removes p from the list. Paths still resolved to p keep its
// entry alive until they are closed or re-resolved. The native provider
// cannot be unregistered.
func (r *Registry) Unregister(p core.Provider) error {
	if p == nil {
		return errors.New(errors.CodeInvalidInput, "provider is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findLocked(p)
	if idx < 0 {
		return errors.WithContext(
			errors.Newf(errors.CodeNotFound, "provider %q is not registered", p.Name()),
			logKeyProvider, p.Name(),
		)
	}
	if idx == r.native {
		return errors.New(errors.CodeInvalidInput, "the native provider cannot be unregistered")
	}

	r.unregisterLocked(idx)
	return nil
}

func (r *Registry) unregisterLocked(idx int) {
	for i, o := range r.order {
		if o == idx {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	e := &r.entries[idx]
	e.registered = false
	epoch := r.bumpLocked()
	r.logger.Debug("provider unregistered", slog.String(logKeyProvider, e.name), slog.Uint64(logKeyEpoch, epoch))
	r.unpinLocked(idx)
}

// findLocked returns the slot of the registered entry holding p, or -1.
func (r *Registry) findLocked(p core.Provider) int {
	if !isComparable(p) {
		return -1
	}
	for _, idx := range r.order {
		q := r.entries[idx].provider
		if q == p {
			return idx
		}
	}
	return -1
}

func isComparable(p core.Provider) bool {
	return reflect.TypeOf(p).Comparable()
}

// pin adds a reference to the entry behind ref. With requireRegistered the
// entry must still be in the list, which is what a fresh resolution needs.
func (r *Registry) pin(ref EntryRef, requireRegistered bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.lookupLocked(ref)
	if e == nil || (requireRegistered && !e.registered) {
		return false
	}
	e.pins++
	return true
}

// unpin drops a reference taken by pin.
func (r *Registry) unpin(ref EntryRef) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookupLocked(ref) != nil {
		r.unpinLocked(ref.index)
	}
}

func (r *Registry) unpinLocked(idx int) {
	e := &r.entries[idx]
	e.pins--
	if e.pins > 0 || e.registered {
		return
	}
	r.logger.Debug("registry slot reclaimed", slog.String(logKeyProvider, e.name), slog.Int("slot", idx))
	*e = entry{gen: e.gen}
	r.free = append(r.free, idx)
}

func (r *Registry) lookupLocked(ref EntryRef) *entry {
	if !ref.Valid() || ref.index < 0 || ref.index >= len(r.entries) {
		return nil
	}
	e := &r.entries[ref.index]
	if e.gen != ref.gen || !e.live() {
		return nil
	}
	return e
}

// Lookup returns the provider behind ref if its entry is still alive.
func (r *Registry) Lookup(ref EntryRef) (core.Provider, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.lookupLocked(ref)
	if e == nil {
		return nil, false
	}
	return e.provider, true
}

// Registered reports whether ref's entry is alive and still in the list.
func (r *Registry) Registered(ref EntryRef) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.lookupLocked(ref)
	return e != nil && e.registered
}

// Snapshot copies the list in priority order.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Epoch:   r.epoch.Load(),
		Entries: make([]SnapshotEntry, 0, len(r.order)),
	}
	for _, idx := range r.order {
		e := &r.entries[idx]
		s.Entries = append(s.Entries, SnapshotEntry{
			Ref:      EntryRef{index: idx, gen: e.gen},
			Provider: e.provider,
			Native:   idx == r.native,
		})
	}
	return s
}

// Providers lists the registered providers in priority order.
func (r *Registry) Providers() []core.Provider {
	s := r.Snapshot()
	out := make([]core.Provider, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Provider
	}
	return out
}

// Native returns the native provider.
func (r *Registry) Native() core.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[r.native].provider
}

// Stats reports arena usage.
func (r *Registry) Stats() RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := RegistryStats{
		Registered: len(r.order),
		Reclaimed:  len(r.free),
	}
	for i := range r.entries {
		if r.entries[i].live() {
			stats.Live++
		}
	}
	return stats
}

// shutdown unregisters every provider except the native one.
func (r *Registry) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, idx := range append([]int(nil), r.order...) {
		if idx != r.native {
			r.unregisterLocked(idx)
		}
	}
}
