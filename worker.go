package vfs

// Worker carries the per-goroutine state of the dispatch layer: a cached
// snapshot of the provider list and a copy of the current directory. A
// Worker must not be shared between goroutines. Paths passed to a Worker
// must likewise be owned by the calling goroutine.
type Worker struct {
	fs   *FS
	snap Snapshot

	cwd      string
	cwdEpoch uint64
}

// NewWorker creates a Worker bound to f.
func (f *FS) NewWorker() *Worker {
	return &Worker{fs: f}
}

// FS returns the filesystem the worker is bound to.
func (w *Worker) FS() *FS {
	return w.fs
}

// Snapshot returns the worker's view of the provider list, refreshing it
// first if the registry epoch has moved.
func (w *Worker) Snapshot() Snapshot {
	return w.snapshot()
}

func (w *Worker) snapshot() Snapshot {
	if w.snap.Entries == nil || w.snap.Epoch != w.fs.reg.Epoch() {
		w.snap = w.fs.reg.Snapshot()
	}
	return w.snap
}

// Close releases the cached snapshot and current directory. The Worker can
// still be used afterwards; it simply starts from scratch.
func (w *Worker) Close() error {
	w.snap = Snapshot{}
	w.cwd = ""
	w.cwdEpoch = 0
	return nil
}
