// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/positional-write/sync capabilities
//   - [FileSystem]: filesystem operations (open, remove, stat, mkdir, readdir)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Imprint write-back needs [io.WriterAt]: the sync bit of a persisted index
// is patched in place after the body has been flushed.
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".timprints", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
//
// This package intentionally does NOT include context.Context parameters.
// Filesystem operations are typically fast and non-interruptible at the
// syscall level.
package fs
