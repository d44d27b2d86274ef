// Package metrics exposes Prometheus metrics for the gateway on a private
// registry: HTTP request metrics, per-tenant delivery counters and backend
// call latencies.
package metrics
