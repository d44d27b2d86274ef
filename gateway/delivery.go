package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ruteri/celia-media/interfaces"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// redirect checks that key exists and answers with a presigned URL for it.
// No URL is presigned for a missing key.
func (d *Dispatcher) redirect(ctx context.Context, b *TenantBackend, key string) (*interfaces.Delivery, error) {
	err := d.backendCall(ctx, b, interfaces.OpHead, func(ctx context.Context) error {
		return b.Store.HeadObject(ctx, key)
	})
	if err != nil {
		return nil, classify(b.Name, key, interfaces.OpHead, err)
	}

	var url string
	err = d.backendCall(ctx, b, interfaces.OpPresign, func(ctx context.Context) error {
		var err error
		url, err = b.Store.PresignGetObject(ctx, key, b.PresignExpiry)
		return err
	})
	if err != nil {
		// A missing key cannot be reported by presigning.
		return nil, interfaces.NewDeliveryError(interfaces.FailureBackendError, b.Name, key, interfaces.OpPresign, err)
	}

	return interfaces.NewRedirect(url), nil
}

// proxy fetches key and hands its body through unbuffered.
func (d *Dispatcher) proxy(ctx context.Context, b *TenantBackend, key string) (*interfaces.Delivery, error) {
	var obj *interfaces.Object
	err := d.backendCall(ctx, b, interfaces.OpGet, func(ctx context.Context) error {
		var err error
		obj, err = b.Store.GetObject(ctx, key)
		return err
	})
	if err != nil {
		return nil, classify(b.Name, key, interfaces.OpGet, err)
	}
	if obj == nil {
		return nil, interfaces.NewDeliveryError(interfaces.FailureBackendError, b.Name, key, interfaces.OpGet,
			errors.New("backend returned no object"))
	}

	body := obj.Body
	if body == nil {
		body = http.NoBody
	}
	return interfaces.NewStream(obj.ContentType, obj.ContentLength, body), nil
}

func classify(tenant, key, op string, err error) *interfaces.DeliveryError {
	if errors.Is(err, interfaces.ErrObjectNotFound) {
		return interfaces.NewDeliveryError(interfaces.FailureObjectNotFound, tenant, key, op, err)
	}
	return interfaces.NewDeliveryError(interfaces.FailureBackendError, tenant, key, op, err)
}

// backendCall runs one object store call inside a child span and records its
// latency.
func (d *Dispatcher) backendCall(ctx context.Context, b *TenantBackend, op string, fn func(context.Context) error) error {
	ctx, span := d.tracer.Start(ctx, fmt.Sprintf("objectstore.%s", op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("bucket", b.Bucket)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, interfaces.ErrObjectNotFound):
		result = "not_found"
	default:
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("result", result))
	d.metrics.ObserveBackendCall(op, result, elapsed)

	d.log.Debug("Backend call",
		"tenant", b.Name,
		"op", op,
		"result", result,
		"duration", elapsed)
	return err
}
