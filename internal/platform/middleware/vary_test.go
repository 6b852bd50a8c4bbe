package middleware

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestVaryAddsAcceptOnly(t *testing.T) {
	resp := httptest.NewRecorder()
	Vary()(http.NotFoundHandler()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	got := resp.Header().Values("Vary")
	if !slices.Equal(got, []string{"Accept"}) {
		t.Fatalf("expected Vary [Accept], got %v", got)
	}
}

func TestVaryIsVisibleToHandler(t *testing.T) {
	var seen []string
	h := Vary()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		seen = w.Header().Values("Vary")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !slices.Contains(seen, "Accept") {
		t.Fatalf("expected handler to see Vary Accept, got %v", seen)
	}
}

func TestVaryLeavesOriginToCORS(t *testing.T) {
	h := Vary()(CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	got := resp.Header().Values("Vary")
	if !slices.Contains(got, "Accept") || !slices.Contains(got, "Origin") {
		t.Fatalf("expected Vary to list Accept and Origin, got %v", got)
	}
	if n := countValue(got, "Origin"); n != 1 {
		t.Fatalf("expected Origin once, got %d in %v", n, got)
	}
}

func TestVaryKeepsExistingValues(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
	})

	resp := httptest.NewRecorder()
	Vary()(handler).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := resp.Header().Values("Vary"); !slices.Equal(got, []string{"Accept", "Accept-Encoding"}) {
		t.Fatalf("expected [Accept Accept-Encoding], got %v", got)
	}
}

func countValue(values []string, want string) int {
	n := 0
	for _, v := range values {
		if v == want {
			n++
		}
	}
	return n
}
