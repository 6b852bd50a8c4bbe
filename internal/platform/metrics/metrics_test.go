package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestRouter(m *Metrics) chi.Router {
	router := chi.NewRouter()
	router.Use(m.Middleware())
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	return router
}

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	m := New("test")
	router := newTestRouter(m)

	for _, path := range []string{"/", "/", "/items/1", "/items/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	tests := []struct {
		route  string
		status string
		want   float64
	}{
		{"/", "200", 2},
		{"/items/{id}", "202", 2},
		{unmatchedRoute, "404", 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, tt.route, tt.status))
		if got != tt.want {
			t.Errorf("route %s status %s: expected %v, got %v", tt.route, tt.status, tt.want, got)
		}
	}
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Fatalf("expected no in-flight requests, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 3 {
		t.Fatalf("expected 3 duration series, got %d", n)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("test")
	router := newTestRouter(m)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	resp := httptest.NewRecorder()
	m.Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{
		`test_http_requests_total{method="GET",route="/",status="200"} 1`,
		"test_http_request_duration_seconds_bucket",
		"test_http_requests_in_flight",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}

func TestRoutePatternWithoutRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := routePattern(req); got != unmatchedRoute {
		t.Fatalf("expected %q, got %q", unmatchedRoute, got)
	}
}

func TestMiddlewareLabelsMethodNotAllowedWithRoute(t *testing.T) {
	m := New("test")
	router := newTestRouter(m)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/items/7", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "/items/{id}", "405")); got != 1 {
		t.Fatalf("expected 405 counted under /items/{id}, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, unmatchedRoute, "405")); got != 0 {
		t.Fatalf("expected no unmatched 405 series, got %v", got)
	}
}
