// Package blobstore provides storage targets for exported buffers.
//
// A buffer exported with ExportTo is written as one blob in the same text
// format as a local export; ImportFrom streams it back.
//
// # Built-in Implementations
//
//   - LocalStore: local directory, atomic writes, mmap reads
//   - MemoryStore: in-memory, for tests
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 with multipart streaming uploads
//
// # Custom Implementations
//
// Implement BlobStore to support other backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
