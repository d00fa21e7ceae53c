// Package minio stores exported buffers in MinIO or any other
// S3-compatible object store through the official MinIO client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "buffers/")
//	err = buf.ExportTo(ctx, store, "run-42.txt")
package minio
