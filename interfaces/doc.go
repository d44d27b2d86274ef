// Package interfaces defines the core interfaces and types of the file
// delivery gateway, separating definitions from implementations.
//
// # Storage Interfaces
//
// ObjectStore: the three backend capabilities the gateway uses against a
// single bucket (existence check, presigned download URL, streaming fetch).
// The production implementation lives in the storage package and talks to any
// S3-compatible service; storage also provides in-memory and mock doubles.
//
// ObjectStoreFactory: creates ObjectStores from resolved per-tenant options.
//
// # Delivery Types
//
// Delivery is the successful outcome of serving one request: either a
// redirect target or a content type plus a single-pass body stream.
//
// # Errors
//
// DeliveryError is the only failure type crossing the dispatcher boundary. Its
// Kind is one of FailureTenantUnknown, FailureObjectNotFound or
// FailureBackendError, and it matches the sentinels ErrTenantUnknown,
// ErrObjectNotFound and ErrBackend with errors.Is.
package interfaces
