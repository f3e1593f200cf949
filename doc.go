// Package vfs dispatches filesystem operations across a set of mounted
// providers.
//
// A provider is anything implementing core.Provider plus whichever optional
// capability interfaces it supports (core.Stater, core.Opener, ...). The
// native provider, backed by the host filesystem, is always present and
// always last in priority order. Every other provider is registered at the
// head of the list, so the most recently registered provider gets the first
// chance to claim a path and can shadow the native namespace.
//
// Paths are handled as *Path values. A Path caches its translated form, its
// normalized form and the provider that owns it. The cache is stamped with
// the registry epoch, which moves whenever the set or order of providers
// changes, so a cached owner is never trusted after a mount change.
//
// Work happens through a Worker, which holds the per-goroutine state: a
// snapshot of the provider list and a copy of the current directory. Create
// one per goroutine and close it when done:
//
//	fsys, err := vfs.New()
//	if err != nil {
//	    return err
//	}
//	defer fsys.Shutdown()
//
//	mem, _ := mount.New(billy.NewMemory(), mount.WithVolume("mem:/"))
//	if _, err := fsys.Register(mem); err != nil {
//	    return err
//	}
//
//	w := fsys.NewWorker()
//	defer w.Close()
//
//	p := vfs.NewPath("mem:/notes.txt")
//	defer p.Close()
//	f, err := w.OpenForWriting(p, 0o644)
//
// Operations that span two paths (Rename, CopyFile, CopyDirectory) are only
// carried out when both paths belong to the same provider. Otherwise they
// fail with errors.CodeCrossDevice, which also matches syscall.EXDEV. Use
// CopyAcross to move data between providers explicitly.
package vfs
