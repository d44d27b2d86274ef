package api

import "io"

// TenantInfo is one entry of the GET /tenants response.
type TenantInfo struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}

// ObjectResolver is the client-side view of the gateway.
type ObjectResolver interface {
	// Resolve returns the presigned URL a redirect-mode tenant answers with,
	// without following it.
	Resolve(tenant, key string) (string, error)

	// Fetch downloads the object into w, following redirects, and returns the
	// number of bytes written.
	Fetch(tenant, key string, w io.Writer) (int64, error)

	// Tenants lists the tenants the gateway serves.
	Tenants() ([]TenantInfo, error)
}
