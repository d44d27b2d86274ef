// Package storage provides the object store clients the gateway serves files
// from.
//
// The production implementation, S3ObjectStore, talks to Amazon S3 or any
// S3-compatible service (MinIO, Ceph RGW, R2, ...) through aws-sdk-go. Each
// store is bound to one bucket and owns its own connection pool; it is safe for
// concurrent use and never mutated after construction.
//
// # Capabilities
//
// Only three backend operations are used:
//
//   - HeadObject: metadata-only existence check
//   - PresignGetObject: local signing of a time-limited download URL
//   - GetObject: streaming fetch; the body is handed out unread
//
// A missing key is reported as an error wrapping interfaces.ErrObjectNotFound.
// HEAD responses carry no body, so for HeadObject any 404 counts as missing;
// for GetObject only the NoSuchKey code does (a missing bucket is a backend
// error).
//
// # Construction
//
// ObjectStoreFactory builds stores from resolved per-tenant options:
//
//	factory := storage.NewObjectStoreFactory(logger)
//	store, err := factory.ObjectStoreFor(interfaces.ObjectStoreOptions{
//	    EndpointURL:    "http://minio.internal:9000",
//	    Region:         "us-east-1",
//	    Bucket:         "docs",
//	    AccessKey:      accessKey,
//	    SecretKey:      secretKey,
//	    ForcePathStyle: true,
//	})
//
// No request is sent during construction.
//
// # Test Doubles
//
// MemoryObjectStore is a programmable in-memory store that counts calls per
// capability, accepts injected errors and tracks unclosed bodies.
// MemoryObjectStoreFactory hands them out per bucket. MockObjectStore and
// MockObjectStoreFactory are testify mocks.
package storage
