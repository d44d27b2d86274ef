// Package tracing configures OpenTelemetry tracing with an OTLP/HTTP exporter
// and provides HTTP server middleware.
package tracing
