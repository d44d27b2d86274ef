package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values for requests naming a tenant that is not configured, so
// arbitrary request paths cannot create series.
const (
	UnknownTenantLabel = "_unknown"
	UnknownModeLabel   = "none"
)

// GatewayMetrics counts deliveries and times backend calls.
// All methods are no-ops on a nil receiver.
type GatewayMetrics struct {
	deliveries   *prometheus.CounterVec
	backendCalls *prometheus.HistogramVec
}

// NewGatewayMetrics registers the gateway collectors on reg.
func NewGatewayMetrics(reg prometheus.Registerer, namespace string) *GatewayMetrics {
	m := &GatewayMetrics{
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "deliveries_total",
			Help:      "Served requests partitioned by tenant, delivery mode and outcome.",
		}, []string{"tenant", "mode", "outcome"}),
		backendCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "backend_call_duration_seconds",
			Help:      "Latency of object store calls partitioned by operation and result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "result"}),
	}
	reg.MustRegister(m.deliveries, m.backendCalls)
	return m
}

// ObserveDelivery counts one served request. outcome is a delivery kind
// ("redirect", "stream") or a failure kind.
func (m *GatewayMetrics) ObserveDelivery(tenant, mode, outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(tenant, mode, outcome).Inc()
}

// ObserveBackendCall records one object store call. result is "ok",
// "not_found" or "error".
func (m *GatewayMetrics) ObserveBackendCall(op, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.backendCalls.WithLabelValues(op, result).Observe(d.Seconds())
}
