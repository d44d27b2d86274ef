/*
Package httpserver serves objects from the configured tenants over HTTP.

# Endpoints

  - GET /{tenant}/{key...} - Deliver an object. Redirect-mode tenants answer
    302 with a presigned Location; proxy-mode tenants answer 200 and stream
    the body with the backend's Content-Type (application/octet-stream when
    none was reported) and Content-Length when known.
  - GET /tenants - Configured tenants and their delivery modes
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Mark server as not ready
  - GET /undrain - Mark server as ready
  - /debug/pprof - Profiling, when enabled

# Errors

Unknown tenants and missing objects are answered with 404, any other backend
failure with 500. The body is the plain-text error message:

	config not found: <tenant>
	object not found: <key>
	S3 error: <backend message>

Every failure is logged once at error level and recorded on the request span.

# Middleware

All routes pass through panic recovery, slog access logging, Prometheus HTTP
metrics and OpenTelemetry request tracing. Metrics are served by a separate
listener owned by metrics.MetricsServer.
*/
package httpserver
