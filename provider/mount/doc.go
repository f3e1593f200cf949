// Package mount exposes any core.FS backend as a VFS provider.
//
// A mount either sits at a mount point inside another provider's namespace
// ("/d/v") or owns a volume prefix of its own ("mem:/", "s3://bucket/").
// Mount points shadow whatever lies beneath them because newer providers
// are asked first.
//
//	p, err := mount.New(billy.NewMemory(), mount.WithVolume("mem:/"))
//	if err != nil {
//	    return err
//	}
//	if _, err := fsys.Register(p); err != nil {
//	    return err
//	}
package mount
