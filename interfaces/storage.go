package interfaces

import (
	"context"
	"errors"
	"io"
	"time"
)

// DefaultContentType is reported for proxied objects whose backend did not
// return a content type.
const DefaultContentType = "application/octet-stream"

var (
	// ErrObjectNotFound is returned by an ObjectStore when the backend
	// affirmatively reports that the requested key does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// Object is the result of a full object fetch.
// Body must be closed by whoever ends up owning it.
type Object struct {
	// ContentType as reported by the backend, empty if none was reported.
	ContentType string

	// ContentLength is the object size in bytes, or -1 when unknown.
	ContentLength int64

	// Body streams the object bytes. It is read at most once.
	Body io.ReadCloser
}

// ObjectStore is the set of backend capabilities the gateway depends on.
// It is bound to a single bucket.
type ObjectStore interface {
	// HeadObject checks whether key exists without fetching its body.
	// Returns an error wrapping ErrObjectNotFound if it does not.
	HeadObject(ctx context.Context, key string) error

	// PresignGetObject returns a download URL for key valid for expiry.
	PresignGetObject(ctx context.Context, key string, expiry time.Duration) (string, error)

	// GetObject fetches key. The returned body is not buffered.
	// Returns an error wrapping ErrObjectNotFound if key does not exist.
	GetObject(ctx context.Context, key string) (*Object, error)

	// Bucket returns the bucket name this store is bound to.
	Bucket() string
}

// ObjectStoreOptions carries everything needed to construct a client for one
// S3-compatible bucket. Credentials are already resolved plain strings.
type ObjectStoreOptions struct {
	EndpointURL    string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// ObjectStoreFactory creates ObjectStores. Implementations must not perform
// network calls during construction.
type ObjectStoreFactory interface {
	ObjectStoreFor(opts ObjectStoreOptions) (ObjectStore, error)
}
