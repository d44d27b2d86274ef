package gateway

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ruteri/celia-media/config"
	"github.com/ruteri/celia-media/interfaces"
)

// TenantBackend is everything needed to serve one tenant's requests.
// It is immutable after construction.
type TenantBackend struct {
	Name   string
	Store  interfaces.ObjectStore
	Bucket string
	Mode   interfaces.DeliveryMode

	// PresignExpiry is the effective expiry, never zero.
	PresignExpiry time.Duration
}

// Registry maps tenant names to backends. It is built once at startup and
// only read afterwards, so it is safe for concurrent use without locking.
type Registry struct {
	tenants map[string]*TenantBackend
	names   []string
}

// NewRegistry builds one object store client per tenant. Tenants without
// their own expiry use defaultExpiry. No network calls are made; the only
// failure is a client construction error.
func NewRegistry(tenants []config.Tenant, defaultExpiry time.Duration, factory interfaces.ObjectStoreFactory, log *slog.Logger) (*Registry, error) {
	if defaultExpiry <= 0 {
		return nil, errors.New("default presign expiry must be positive")
	}

	r := &Registry{
		tenants: make(map[string]*TenantBackend, len(tenants)),
		names:   make([]string, 0, len(tenants)),
	}

	for i := range tenants {
		t := &tenants[i]
		if _, exists := r.tenants[t.Name]; exists {
			return nil, fmt.Errorf("duplicate tenant %q", t.Name)
		}

		store, err := factory.ObjectStoreFor(t.ObjectStoreOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to create object store for tenant %q: %w", t.Name, err)
		}

		expiry := t.PresignExpiry
		if expiry <= 0 {
			expiry = defaultExpiry
		}

		r.tenants[t.Name] = &TenantBackend{
			Name:          t.Name,
			Store:         store,
			Bucket:        t.BucketName,
			Mode:          t.Mode,
			PresignExpiry: expiry,
		}
		r.names = append(r.names, t.Name)

		log.Info("Registered tenant",
			slog.String("tenant", t.Name),
			slog.String("bucket", t.BucketName),
			slog.String("endpoint", t.EndpointURL),
			slog.String("mode", t.Mode.String()),
			slog.Duration("presignExpiry", expiry))
	}

	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the backend for name. Matching is exact and case-sensitive.
func (r *Registry) Lookup(name string) (*TenantBackend, bool) {
	b, ok := r.tenants[name]
	return b, ok
}

// Names returns the registered tenant names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered tenants.
func (r *Registry) Len() int {
	return len(r.tenants)
}
