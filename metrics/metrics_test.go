package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeNamespace(t *testing.T) {
	assert.Equal(t, "celia_media", sanitizeNamespace("celia-media"))
	assert.Equal(t, "github_com_ruteri_x", sanitizeNamespace("github.com/ruteri/x"))
	assert.Equal(t, "_9lives", sanitizeNamespace("9lives"))
	assert.Equal(t, "v2", sanitizeNamespace("v2"))
	assert.Equal(t, "_1_2", sanitizeNamespace("1.2"))
}

func TestMetricsServer_Handler(t *testing.T) {
	m, err := New("celia-media", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Equal(t, "celia_media", m.Namespace())

	gm := NewGatewayMetrics(m.Registry(), m.Namespace())
	gm.ObserveDelivery("photos", "redirect", "redirect")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `celia_media_gateway_deliveries_total{mode="redirect",outcome="redirect",tenant="photos"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestGatewayMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	gm := NewGatewayMetrics(reg, "test")

	gm.ObserveDelivery("photos", "redirect", "redirect")
	gm.ObserveDelivery("photos", "redirect", "redirect")
	gm.ObserveDelivery("photos", "redirect", "object_not_found")
	gm.ObserveDelivery(UnknownTenantLabel, UnknownModeLabel, "tenant_unknown")

	assert.Equal(t, 2.0, testutil.ToFloat64(gm.deliveries.WithLabelValues("photos", "redirect", "redirect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gm.deliveries.WithLabelValues("photos", "redirect", "object_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gm.deliveries.WithLabelValues(UnknownTenantLabel, UnknownModeLabel, "tenant_unknown")))

	gm.ObserveBackendCall("head", "ok", 10*time.Millisecond)
	gm.ObserveBackendCall("presign", "ok", time.Millisecond)
	assert.Equal(t, 2, testutil.CollectAndCount(gm.backendCalls))
}

func TestGatewayMetrics_NilIsNoop(t *testing.T) {
	var gm *GatewayMetrics
	assert.NotPanics(t, func() {
		gm.ObserveDelivery("photos", "proxy", "stream")
		gm.ObserveBackendCall("get", "error", time.Second)
	})
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	hm := NewHTTPMetrics(reg, "test")

	handler := hm.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.Error(w, "object not found: x", http.StatusNotFound)
		case "/implicit":
			io.WriteString(w, "ok")
		}
	}))

	for _, path := range []string{"/missing", "/implicit", "/implicit", "/silent"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(hm.requests.WithLabelValues("404", "GET")))
	assert.Equal(t, 3.0, testutil.ToFloat64(hm.requests.WithLabelValues("200", "GET")))
	assert.Equal(t, 0.0, testutil.ToFloat64(hm.inflight))

	expected := `
# HELP test_http_inflight_requests Current number of inflight HTTP requests.
# TYPE test_http_inflight_requests gauge
test_http_inflight_requests 0
`
	assert.NoError(t, testutil.CollectAndCompare(hm.inflight, strings.NewReader(expected)))
}
