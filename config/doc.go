// Package config loads vecbuf settings from a YAML file.
//
// The file is named by the VECBUF_CONFIG environment variable or passed
// explicitly to LoadFile. ${VAR} and ${VAR:-default} references in string
// values are expanded from the environment, so credentials need not be
// written into the file:
//
//	log:
//	  level: debug
//	  format: json
//	resources:
//	  memory_limit_bytes: 1073741824
//	  max_workers: 8
//	codec: zstd
//	store:
//	  backend: minio
//	  endpoint: ${MINIO_ENDPOINT:-localhost:9000}
//	  bucket: buffers
//	  access_key: ${MINIO_ACCESS_KEY}
//	  secret_key: ${MINIO_SECRET_KEY}
package config
