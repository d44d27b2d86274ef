package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ruteri/celia-media/interfaces"
)

// ObjectStoreFactory creates S3-compatible object stores from resolved
// per-tenant options.
type ObjectStoreFactory struct {
	log *slog.Logger
}

// NewObjectStoreFactory creates a new factory instance.
func NewObjectStoreFactory(logger *slog.Logger) *ObjectStoreFactory {
	return &ObjectStoreFactory{
		log: logger,
	}
}

// ObjectStoreFor creates a client for the bucket described by opts.
//
// The endpoint URL must be absolute with an http or https scheme. Construction
// performs no network calls, so an unreachable endpoint is only noticed on the
// first request.
func (sf *ObjectStoreFactory) ObjectStoreFor(opts interfaces.ObjectStoreOptions) (interfaces.ObjectStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	if opts.EndpointURL != "" {
		u, err := url.Parse(opts.EndpointURL)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint URL %q: %w", opts.EndpointURL, err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
		default:
			return nil, fmt.Errorf("unsupported endpoint scheme: %q", u.Scheme)
		}
	}

	sf.log.Debug("Creating S3 object store",
		slog.String("endpoint", opts.EndpointURL),
		slog.String("bucket", opts.Bucket),
		slog.String("region", opts.Region),
		slog.Bool("force_path_style", opts.ForcePathStyle))

	return NewS3ObjectStore(opts, sf.log.With(slog.String("bucket", opts.Bucket)))
}
