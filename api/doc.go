/*
Package api holds the types shared between the gateway server and its clients.

HTTPServerConfig configures the server in package httpserver. TenantInfo is
the wire format of the tenant listing, and ObjectResolver is implemented by
the HTTP client in package api/clients.

# Endpoints

	GET /{tenant}/{key...}   302 to a presigned URL, or 200 with the object bytes
	GET /tenants             configured tenants and their delivery modes
	GET /livez, /readyz      health probes
	GET /drain, /undrain     toggle readiness
*/
package api
