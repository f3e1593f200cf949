package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
)

func TestRegister_HeadInsertion(t *testing.T) {
	fsys, nat := newTestFS(t, nil)
	a := &stubProvider{name: "a", volume: "a:/"}
	b := &stubProvider{name: "b", volume: "b:/"}

	start := fsys.Registry().Epoch()
	_, err := fsys.Register(a)
	require.NoError(t, err)
	_, err = fsys.Register(b)
	require.NoError(t, err)

	assert.Equal(t, []core.Provider{b, a, nat}, fsys.Registry().Providers())
	assert.Equal(t, start+2, fsys.Registry().Epoch())

	snap := fsys.Registry().Snapshot()
	assert.True(t, snap.Native().Native)
	assert.Equal(t, nat, snap.Native().Provider)
}

func TestRegister_Errors(t *testing.T) {
	fsys, nat := newTestFS(t, nil)
	a := &stubProvider{name: "a", volume: "a:/"}
	_, err := fsys.Register(a)
	require.NoError(t, err)

	tests := []struct {
		name string
		p    core.Provider
		code errors.ErrorCode
	}{
		{name: "nil provider", p: nil, code: errors.CodeInvalidInput},
		{name: "registered twice", p: a, code: errors.CodeAlreadyExists},
		{name: "native again", p: nat, code: errors.CodeAlreadyExists},
		{name: "not comparable", p: valueProvider{volumes: []string{"v:/"}}, code: errors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			epoch := fsys.Registry().Epoch()
			_, err := fsys.Register(tt.p)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.Equal(t, epoch, fsys.Registry().Epoch())
		})
	}
}

// valueProvider holds a slice, so interface values of it cannot be compared.
type valueProvider struct {
	volumes []string
}

func (v valueProvider) Name() string { return "value" }

func TestUnregister_Errors(t *testing.T) {
	fsys, nat := newTestFS(t, nil)

	err := fsys.Unregister(nat)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	err = fsys.Unregister(&stubProvider{name: "ghost"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	err = fsys.Unregister(nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestUnregister_BumpsEpoch(t *testing.T) {
	fsys, nat := newTestFS(t, nil)
	a := &stubProvider{name: "a", volume: "a:/"}
	ref, err := fsys.Register(a)
	require.NoError(t, err)

	epoch := fsys.Registry().Epoch()
	require.NoError(t, fsys.Unregister(a))
	assert.Equal(t, epoch+1, fsys.Registry().Epoch())
	assert.Equal(t, []core.Provider{nat}, fsys.Registry().Providers())

	_, ok := fsys.Registry().Lookup(ref)
	assert.False(t, ok, "an unpinned entry is reclaimed at once")
}

func TestUnregister_PinnedEntrySurvivesUntilPathCloses(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	w := newWorker(t, fsys)

	mem := memVolume(t, "mem:/")
	ref, err := fsys.Register(mem)
	require.NoError(t, err)

	p := NewPath("mem:/x")
	owner, err := w.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, mem, owner)

	require.NoError(t, fsys.Unregister(mem))
	stats := fsys.Registry().Stats()
	assert.Equal(t, 1, stats.Registered)
	assert.Equal(t, 2, stats.Live, "the path still pins the entry")

	got, ok := fsys.Registry().Lookup(ref)
	require.True(t, ok)
	assert.Equal(t, mem, got)

	p.Close()
	stats = fsys.Registry().Stats()
	assert.Equal(t, 1, stats.Live)
	assert.Equal(t, 1, stats.Reclaimed)
	_, ok = fsys.Registry().Lookup(ref)
	assert.False(t, ok)

	// A new provider with the same name reuses the slot without colliding
	// with the old entry.
	again := memVolume(t, "mem:/")
	ref2, err := fsys.Register(again)
	require.NoError(t, err)
	assert.Equal(t, 0, fsys.Registry().Stats().Reclaimed)
	assert.NotEqual(t, ref, ref2)
	_, ok = fsys.Registry().Lookup(ref)
	assert.False(t, ok)

	q := newPath(t, "mem:/x")
	owner, err = w.Resolve(q)
	require.NoError(t, err)
	assert.Equal(t, again, owner)
}

func TestRegistry_Shutdown(t *testing.T) {
	fsys, nat := newTestFS(t, nil)
	for _, name := range []string{"a", "b", "c"} {
		_, err := fsys.Register(&stubProvider{name: name, volume: name + ":/"})
		require.NoError(t, err)
	}

	fsys.Shutdown()
	assert.Equal(t, []core.Provider{nat}, fsys.Registry().Providers())
	assert.Equal(t, RegistryStats{Registered: 1, Live: 1, Reclaimed: 3}, fsys.Registry().Stats())
}

func TestRegistry_EpochMetrics(t *testing.T) {
	m := NewMetrics()
	fsys, _ := newTestFS(t, nil, WithMetrics(m))
	a := &stubProvider{name: "a", volume: "a:/"}

	_, err := fsys.Register(a)
	require.NoError(t, err)
	require.NoError(t, fsys.Unregister(a))

	assert.Equal(t, int64(2), m.Snapshot().EpochBumps)
	assert.Same(t, m, fsys.Metrics())
}

func TestWorker_SnapshotRefresh(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	w := newWorker(t, fsys)

	first := w.Snapshot()
	assert.Len(t, first.Entries, 1)

	_, err := fsys.Register(&stubProvider{name: "a", volume: "a:/"})
	require.NoError(t, err)

	second := w.Snapshot()
	assert.Len(t, second.Entries, 2)
	assert.Greater(t, second.Epoch, first.Epoch)

	require.NoError(t, w.Close())
	assert.Len(t, w.Snapshot().Entries, 2)
}
