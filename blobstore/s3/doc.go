// Package s3 stores exported buffers in Amazon S3.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "buffers/")
//	err = buf.ExportTo(ctx, store, "run-42.txt.zst")
//
// Streaming writes go through the SDK's multipart upload manager; Put uses
// a single PutObject request with a CRC32C checksum.
package s3
