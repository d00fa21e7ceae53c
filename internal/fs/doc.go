// Package fs provides the file system seam used by buffer export and import.
//
//   - [LocalFS]: production implementation on the os package
//   - [FaultyFS]: test wrapper that injects open, read, write, sync and
//     close failures
//
// Production code uses fs.Default; tests pass a [FaultyFS] through the
// buffer's WithFileSystem option.
package fs
