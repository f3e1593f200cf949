// Package billy provides go-billy backed storage for VFS providers.
//
// NewLocal wraps osfs and backs the native provider; NewMemory wraps memfs
// and backs in-memory mounts. Both return the same FS type, which
// implements core.FS plus the optional core.MetadataFS, core.SymlinkFS and
// core.TempFS capabilities.
//
//	mem := billy.NewMemory()
//	_ = mem.WriteFile("x.txt", []byte("data"), 0o644)
//	p, _ := mount.New(mem, mount.WithVolume("mem:/"))
//
// # Thread Safety
//
// FS values are safe for concurrent use. File handles are not.
package billy
