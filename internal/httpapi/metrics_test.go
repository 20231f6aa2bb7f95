package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TestMetricsMiddleware_UsesRoutePattern checks that request metrics are
// labeled with the chi route pattern, not the raw path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	h := NewMux(&mockService{})
	postJSON(t, h, "/v1/summarize", `{"text":"x"}`)
	IncrementBackpressure("")

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	body := mrr.Body.Bytes()
	for _, want := range []string{"nlpd_http_requests_total", `path="/v1/summarize"`, `reason="unspecified"`} {
		if !bytes.Contains(body, []byte(want)) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}
