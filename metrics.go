package vfs

import (
	"sync/atomic"
)

// Metrics counts dispatch events. All methods are safe for concurrent use
// and a nil *Metrics records nothing.
type Metrics struct {
	resolutions        atomic.Int64
	resolutionHits     atomic.Int64
	epochBumps         atomic.Int64
	incrementalNorms   atomic.Int64
	crossProviderFails atomic.Int64
	loadFallbacks      atomic.Int64
	cwdChanges         atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	// Resolutions counts provider polls, i.e. resolutions that missed the cache.
	Resolutions int64
	// ResolutionHits counts resolutions answered from a path's cached owner.
	ResolutionHits int64
	// EpochBumps counts registry membership and order changes.
	EpochBumps int64
	// IncrementalNormalizations counts normalizations that started from a
	// base directory's normalized prefix.
	IncrementalNormalizations int64
	// CrossProviderRejections counts binary operations refused with EXDEV.
	CrossProviderRejections int64
	// LoadFallbacks counts loads that went through a temporary native copy.
	LoadFallbacks int64
	// CwdChanges counts installs of a new current directory.
	CwdChanges int64
}

// NewMetrics creates an empty set of counters.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Resolutions:               m.resolutions.Load(),
		ResolutionHits:            m.resolutionHits.Load(),
		EpochBumps:                m.epochBumps.Load(),
		IncrementalNormalizations: m.incrementalNorms.Load(),
		CrossProviderRejections:   m.crossProviderFails.Load(),
		LoadFallbacks:             m.loadFallbacks.Load(),
		CwdChanges:                m.cwdChanges.Load(),
	}
}

func (m *Metrics) recordResolution() {
	if m != nil {
		m.resolutions.Add(1)
	}
}

func (m *Metrics) recordResolutionHit() {
	if m != nil {
		m.resolutionHits.Add(1)
	}
}

func (m *Metrics) recordEpochBump() {
	if m != nil {
		m.epochBumps.Add(1)
	}
}

func (m *Metrics) recordIncrementalNormalization() {
	if m != nil {
		m.incrementalNorms.Add(1)
	}
}

func (m *Metrics) recordCrossProvider() {
	if m != nil {
		m.crossProviderFails.Add(1)
	}
}

func (m *Metrics) recordLoadFallback() {
	if m != nil {
		m.loadFallbacks.Add(1)
	}
}

func (m *Metrics) recordCwdChange() {
	if m != nil {
		m.cwdChanges.Add(1)
	}
}
