// Package core defines the contracts shared by every part of the virtual
// filesystem: the provider capability surface that the dispatch layer
// consumes, and the storage backend interfaces that providers are usually
// built on.
//
// # Providers
//
// A Provider is anything that can be mounted into a vfs.FS. The only
// required method is Name. Every other verb is an optional interface
// (Claimer, Stater, Opener, Renamer, Canonicalizer, CwdGetter, Loader, ...)
// discovered with a type assertion, the same way io/fs discovers optional
// capabilities. A provider that does not implement a verb does not support
// it; Supports answers that question without a type switch at the call site:
//
//	if core.Supports(p, core.VerbRename) {
//	    ...
//	}
//
// # Backends
//
// FS and its optional extensions (MetadataFS, SymlinkFS, TempFS) describe a
// storage backend addressed by slash-separated names relative to its own
// root. Backends know nothing about mount points; the provider/mount
// package adapts any FS into a Provider rooted at a mount point.
//
// Concrete backends live in separate packages:
//
//   - backend/billy - go-billy local (osfs) and in-memory (memfs) storage
//   - backend/minio - MinIO/S3 object storage
//   - backend/afero - afero filesystems, including read-only zip archives
package core
