package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/celia-media/api"
	"github.com/ruteri/celia-media/gateway"
	"github.com/ruteri/celia-media/interfaces"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher resolves a tenant and object key into a delivery.
// *gateway.Dispatcher implements it.
type Dispatcher interface {
	Serve(ctx context.Context, tenant, key string) (*interfaces.Delivery, error)
}

// Handler translates delivery outcomes into HTTP responses.
type Handler struct {
	dispatcher Dispatcher
	tenants    *gateway.Registry
	log        *slog.Logger
}

// NewHandler creates a Handler. tenants may be nil, in which case /tenants
// is not registered.
func NewHandler(dispatcher Dispatcher, tenants *gateway.Registry, log *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		tenants:    tenants,
		log:        log,
	}
}

// RegisterRoutes mounts the object route and the tenant listing on r.
// The object route is GET only; chi answers other methods with 405.
func (h *Handler) RegisterRoutes(r chi.Router) {
	if h.tenants != nil {
		r.Get("/tenants", h.HandleListTenants)
	}
	r.Get("/{tenant}/*", h.HandleGetObject)
}

// HandleGetObject serves GET /{tenant}/{key...}. The key is everything after
// the tenant segment, slashes included, and may be empty.
//
// Redirects answer 302 with Location set to the presigned URL. Streams answer
// 200 with the object's content type and, when known, its length. Unknown
// tenants and missing objects are 404, backend failures 500, each with the
// error message as a plain-text body.
func (h *Handler) HandleGetObject(w http.ResponseWriter, r *http.Request) {
	tenant, key, err := pathParams(r)
	if err != nil {
		h.log.Error("Invalid request path", "err", err, slog.String("path", r.URL.Path))
		http.Error(w, "invalid request path", http.StatusBadRequest)
		return
	}

	delivery, err := h.dispatcher.Serve(r.Context(), tenant, key)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	switch delivery.Kind {
	case interfaces.DeliveryRedirect:
		if !validHeaderValue(delivery.RedirectURL) {
			h.writeFailure(w, r, invalidHeader(tenant, key, interfaces.OpPresign, "Location"))
			return
		}
		w.Header().Set("Location", delivery.RedirectURL)
		w.WriteHeader(http.StatusFound)

	case interfaces.DeliveryStream:
		h.writeStream(w, r, tenant, key, delivery)

	default:
		h.writeFailure(w, r, interfaces.NewDeliveryError(interfaces.FailureBackendError, tenant, key, "",
			fmt.Errorf("unsupported delivery kind %v", delivery.Kind)))
	}
}

func (h *Handler) writeStream(w http.ResponseWriter, r *http.Request, tenant, key string, delivery *interfaces.Delivery) {
	defer delivery.Body.Close()

	if !validHeaderValue(delivery.ContentType) {
		h.writeFailure(w, r, invalidHeader(tenant, key, interfaces.OpGet, "Content-Type"))
		return
	}

	w.Header().Set("Content-Type", delivery.ContentType)
	if delivery.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(delivery.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, delivery.Body)
	if err != nil {
		// The status line is already sent; the client sees a truncated body.
		h.log.Warn("Object stream interrupted",
			"err", err,
			slog.String("tenant", tenant),
			slog.String("key", key),
			slog.Int64("written", written))
	}
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)

	attrs := []any{"err", err, slog.Int("status", status)}
	var de *interfaces.DeliveryError
	if errors.As(err, &de) {
		attrs = append(attrs,
			slog.String("kind", de.Kind.String()),
			slog.String("tenant", de.Tenant),
			slog.String("key", de.Key))
		if de.Op != "" {
			attrs = append(attrs, slog.String("op", de.Op))
		}
	}
	trace.SpanFromContext(r.Context()).RecordError(err)

	// The client is gone; nobody reads the response.
	if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
		h.log.Warn("Request canceled by client", attrs...)
		http.Error(w, err.Error(), status)
		return
	}
	h.log.Error("Failed to serve object", attrs...)

	http.Error(w, err.Error(), status)
}

// StatusForError maps a delivery failure to its HTTP status code.
func StatusForError(err error) int {
	switch interfaces.FailureKindOf(err) {
	case interfaces.FailureTenantUnknown, interfaces.FailureObjectNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HandleListTenants returns the configured tenants and their delivery modes
// as JSON, sorted by name.
func (h *Handler) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	names := h.tenants.Names()
	resp := make([]api.TenantInfo, 0, len(names))
	for _, name := range names {
		b, ok := h.tenants.Lookup(name)
		if !ok {
			continue
		}
		resp = append(resp, api.TenantInfo{Name: name, Mode: b.Mode.String()})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// pathParams extracts the tenant and key. chi matches against the raw path
// when the request contains escaped characters, so both are unescaped here.
func pathParams(r *http.Request) (string, string, error) {
	tenant := chi.URLParam(r, "tenant")
	key := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return tenant, key, nil
	}

	tenant, err := url.PathUnescape(tenant)
	if err != nil {
		return "", "", err
	}
	key, err = url.PathUnescape(key)
	if err != nil {
		return "", "", err
	}
	return tenant, key, nil
}

func invalidHeader(tenant, key, op, header string) error {
	return interfaces.NewDeliveryError(interfaces.FailureBackendError, tenant, key, op,
		fmt.Errorf("invalid %s header value from backend", header))
}

// validHeaderValue rejects control characters other than tab.
func validHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < ' ' && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}
