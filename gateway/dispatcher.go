package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ruteri/celia-media/interfaces"
	"github.com/ruteri/celia-media/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ruteri/celia-media/gateway"

// Dispatcher serves (tenant, key) requests against a Registry.
//
// It holds no per-request state and may be used from any number of
// goroutines. Every call reaches the backend; nothing is cached or coalesced.
type Dispatcher struct {
	registry *Registry
	metrics  *metrics.GatewayMetrics
	tracer   trace.Tracer
	log      *slog.Logger
}

// NewDispatcher creates a Dispatcher. m may be nil. A nil tp uses the global
// tracer provider.
func NewDispatcher(registry *Registry, m *metrics.GatewayMetrics, tp trace.TracerProvider, log *slog.Logger) *Dispatcher {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Dispatcher{
		registry: registry,
		metrics:  m,
		tracer:   tp.Tracer(tracerName),
		log:      log,
	}
}

// Registry returns the registry requests are resolved against.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Serve resolves tenant and delivers key according to the tenant's mode.
//
// Exactly one of the results is non-nil. Errors are always
// *interfaces.DeliveryError. A stream delivery's Body must be closed by the
// caller. An unknown tenant is reported without any backend call.
func (d *Dispatcher) Serve(ctx context.Context, tenant, key string) (delivery *interfaces.Delivery, err error) {
	ctx, span := d.tracer.Start(ctx, "gateway.serve",
		trace.WithAttributes(
			attribute.String("tenant", tenant),
			attribute.String("key", key),
		))
	defer span.End()

	b, ok := d.registry.Lookup(tenant)
	if !ok {
		err := interfaces.NewDeliveryError(interfaces.FailureTenantUnknown, tenant, key, interfaces.OpLookup, nil)
		d.finish(span, metrics.UnknownTenantLabel, metrics.UnknownModeLabel, nil, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("mode", b.Mode.String()))

	switch b.Mode {
	case interfaces.DeliveryModeRedirect:
		delivery, err = d.redirect(ctx, b, key)
	case interfaces.DeliveryModeProxy:
		delivery, err = d.proxy(ctx, b, key)
	default:
		err = interfaces.NewDeliveryError(interfaces.FailureBackendError, tenant, key, interfaces.OpLookup,
			fmt.Errorf("unsupported delivery mode %v", b.Mode))
	}

	d.finish(span, tenant, b.Mode.String(), delivery, err)
	return delivery, err
}

func (d *Dispatcher) finish(span trace.Span, tenantLabel, mode string, delivery *interfaces.Delivery, err error) {
	var outcome string
	if err != nil {
		kind := interfaces.FailureKindOf(err)
		outcome = kind.String()
		span.RecordError(err)
		if kind == interfaces.FailureBackendError {
			span.SetStatus(codes.Error, err.Error())
		}
	} else {
		outcome = delivery.Kind.String()
	}

	span.SetAttributes(attribute.String("outcome", outcome))
	d.metrics.ObserveDelivery(tenantLabel, mode, outcome)
}
