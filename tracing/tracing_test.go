package tracing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_EnabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), Options{Enabled: true, SampleRatio: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestEndpointHelpers(t *testing.T) {
	assert.Equal(t, "collector:4318", stripScheme("http://collector:4318"))
	assert.Equal(t, "collector:4318", stripScheme("HTTPS://collector:4318"))
	assert.Equal(t, "collector:4318", stripScheme("collector:4318"))

	assert.True(t, isInsecure("http://collector:4318"))
	assert.True(t, isInsecure("localhost:4318"))
	assert.False(t, isInsecure("https://collector:4318"))
	assert.False(t, isInsecure("collector:4318"))
}

func TestMiddleware(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	r := chi.NewRouter()
	r.Use(Middleware(tp))
	r.Get("/livez", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/{tenant}/*", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "tenant") == "broken" {
			http.Error(w, "S3 error: boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusFound)
	})

	for _, path := range []string{"/livez", "/photos/2024/a.jpg", "/broken/x"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := sr.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "GET /{tenant}/*", ok.Name())
	assert.Contains(t, ok.Attributes(), attribute.Int("http.status_code", http.StatusFound))
	assert.Contains(t, ok.Attributes(), attribute.String("http.target", "/photos/2024/a.jpg"))
	assert.Equal(t, codes.Unset, ok.Status().Code)

	failed := spans[1]
	assert.Contains(t, failed.Attributes(), attribute.Int("http.status_code", http.StatusInternalServerError))
	assert.Equal(t, codes.Error, failed.Status().Code)
}
