package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs/errors"
)

func TestResolve_NativeClaimsEverything(t *testing.T) {
	fsys, nat := newTestFS(t, nil)
	w := newWorker(t, fsys)

	for _, s := range []string{"/", "/a/b", "rel"} {
		owner, err := w.Resolve(newPath(t, s))
		require.NoError(t, err)
		assert.Equal(t, nat, owner, s)
	}
}

func TestResolve_LaterRegistrationWins(t *testing.T) {
	fsys, nat := newTestFS(t, nil)
	w := newWorker(t, fsys)

	first := memMount(t, "/m")
	second := memMount(t, "/m")
	_, err := fsys.Register(first)
	require.NoError(t, err)
	_, err = fsys.Register(second)
	require.NoError(t, err)

	p := newPath(t, "/m/x")
	owner, err := w.Resolve(p)
	require.NoError(t, err)
	assert.Same(t, second, owner)

	require.NoError(t, fsys.Unregister(second))
	owner, err = w.Resolve(p)
	require.NoError(t, err)
	assert.Same(t, first, owner)

	require.NoError(t, fsys.Unregister(first))
	owner, err = w.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, nat, owner)

	outside := newPath(t, "/mx")
	owner, err = w.Resolve(outside)
	require.NoError(t, err)
	assert.Equal(t, nat, owner)
}

func TestResolve_CachedUntilEpochChanges(t *testing.T) {
	m := NewMetrics()
	fsys, nat := newTestFS(t, nil, WithMetrics(m))
	w := newWorker(t, fsys)

	p := newPath(t, "/m/x")
	for i := 0; i < 3; i++ {
		owner, err := w.Resolve(p)
		require.NoError(t, err)
		assert.Equal(t, nat, owner)
	}
	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.Resolutions)
	assert.Equal(t, int64(2), snap.ResolutionHits)

	mnt := memMount(t, "/m")
	_, err := fsys.Register(mnt)
	require.NoError(t, err)

	owner, err := w.Resolve(p)
	require.NoError(t, err)
	assert.Same(t, mnt, owner, "registration invalidates the cached owner")
	assert.Equal(t, int64(2), m.Snapshot().Resolutions)
}

func TestResolve_Deterministic(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	mnt := memMount(t, "/d/v")
	_, err := fsys.Register(mnt)
	require.NoError(t, err)

	a, b := newWorker(t, fsys), newWorker(t, fsys)
	for _, s := range []string{"/d/v", "/d/v/x/../y", "/d/vv", "/d"} {
		oa, err := a.Resolve(newPath(t, s))
		require.NoError(t, err)
		ob, err := b.Resolve(newPath(t, s))
		require.NoError(t, err)
		assert.Equal(t, oa, ob, s)
	}
}

// leavingProvider unregisters itself while claiming, so the claim refers
// to an entry that is no longer in the list.
type leavingProvider struct {
	stubProvider
	fsys   *FS
	claims int
}

func (l *leavingProvider) ClaimPath(p string) (any, bool) {
	l.claims++
	if l.claims == 1 {
		_ = l.fsys.Unregister(l)
	}
	return nil, true
}

func TestResolve_RetriesWhenRegistryChanges(t *testing.T) {
	fsys, nat := newTestFS(t, nil)
	w := newWorker(t, fsys)

	l := &leavingProvider{stubProvider: stubProvider{name: "leaving", volume: "l:/"}, fsys: fsys}
	_, err := fsys.Register(l)
	require.NoError(t, err)

	owner, err := w.Resolve(newPath(t, "l:/x"))
	require.NoError(t, err)
	assert.Equal(t, nat, owner)
	assert.Equal(t, 1, l.claims)
	assert.Equal(t, 1, fsys.Registry().Stats().Live)
}

// leavingRepProvider hands out a representation from a claim made after
// it has unregistered itself.
type leavingRepProvider struct {
	repProvider
	fsys *FS
	left bool
}

func (l *leavingRepProvider) ClaimPath(p string) (any, bool) {
	r, ok := l.repProvider.ClaimPath(p)
	if ok && !l.left {
		l.left = true
		_ = l.fsys.Unregister(l)
	}
	return r, ok
}

func TestResolve_StaleClaimFreesRepresentation(t *testing.T) {
	fsys, nat := newTestFS(t, nil)
	w := newWorker(t, fsys)

	l := &leavingRepProvider{repProvider: repProvider{stubProvider: stubProvider{name: "leaving", volume: "l:/"}}, fsys: fsys}
	_, err := fsys.Register(l)
	require.NoError(t, err)

	owner, err := w.Resolve(newPath(t, "l:/x"))
	require.NoError(t, err)
	assert.Equal(t, nat, owner)
	assert.True(t, l.left)
	assert.Equal(t, 0, l.live)
}

// churningProvider re-registers a fresh provider on every claim so the
// registry never settles.
type churningProvider struct {
	stubProvider
	fsys *FS
}

func (c *churningProvider) ClaimPath(string) (any, bool) {
	_ = c.fsys.Unregister(c)
	next := &churningProvider{stubProvider: c.stubProvider, fsys: c.fsys}
	_, _ = c.fsys.Register(next)
	return nil, true
}

func TestResolve_GivesUpOnConstantChurn(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	w := newWorker(t, fsys)

	_, err := fsys.Register(&churningProvider{stubProvider: stubProvider{name: "churn", volume: "c:/"}, fsys: fsys})
	require.NoError(t, err)

	_, err = w.Resolve(newPath(t, "c:/x"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeStaleReference, errors.GetCode(err))
}

func TestResolve_RepresentationLifecycle(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	w := newWorker(t, fsys)

	rp := &repProvider{stubProvider: stubProvider{name: "rep", volume: "r:/"}}
	_, err := fsys.Register(rp)
	require.NoError(t, err)

	p := NewPath("r:/a")
	owner, err := w.Resolve(p)
	require.NoError(t, err)
	assert.Same(t, rp, owner)
	assert.Equal(t, 1, rp.live)

	r, err := w.InternalRep(p)
	require.NoError(t, err)
	assert.Equal(t, &rep{path: "r:/a"}, r)
	assert.Equal(t, 1, rp.live, "the claim already produced one")

	d := p.Dup()
	assert.Equal(t, 2, rp.live)

	fromRep, err := w.PathFromRep(rp, r)
	require.NoError(t, err)
	assert.Equal(t, "r:/a", fromRep.String())
	assert.Equal(t, 3, rp.live)

	// Re-resolution after an epoch change swaps the representation.
	_, err = fsys.Register(&stubProvider{name: "other", volume: "o:/"})
	require.NoError(t, err)
	_, err = w.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, 3, rp.live)

	fromRep.Close()
	d.Close()
	p.Close()
	assert.Equal(t, 0, rp.live)
}

func TestInternalRep_CreatesWhenClaimHadNone(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	w := newWorker(t, fsys)
	mnt := memMount(t, "/m")
	_, err := fsys.Register(mnt)
	require.NoError(t, err)

	rep, err := w.InternalRep(newPath(t, "/m/a/b"))
	require.NoError(t, err)
	assert.Equal(t, "a/b", rep)

	back, err := w.PathFromRep(mnt, rep)
	require.NoError(t, err)
	t.Cleanup(back.Close)
	assert.Equal(t, "/m/a/b", back.String())

	_, err = w.PathFromRep(&stubProvider{name: "plain"}, "x")
	assert.True(t, IsNotFound(err))
}
