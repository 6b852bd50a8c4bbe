package root

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "github.com/janisto/devsecops-backend/internal/platform/logging"
)

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	cfg := huma.DefaultConfig("RootTest", "test")
	cfg.CreateHooks = nil
	api := humachi.New(router, cfg)
	Register(api)
	return router
}

func TestGetJSON(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "root-get-json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var data Data
	if err := json.Unmarshal(resp.Body.Bytes(), &data); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if data.Message != Message {
		t.Errorf("expected %q, got %q", Message, data.Message)
	}
}

func TestGetCBOR(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/cbor")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/cbor" {
		t.Errorf("expected application/cbor, got %s", ct)
	}

	var data Data
	if err := cbor.Unmarshal(resp.Body.Bytes(), &data); err != nil {
		t.Fatalf("cbor unmarshal: %v", err)
	}
	if data.Message != Message {
		t.Errorf("expected %q, got %q", Message, data.Message)
	}
}

func TestGetLogsWithRequestLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(applog.WithLogger(r.Context(), zap.New(core))))
		})
	})
	Register(humachi.New(router, huma.DefaultConfig("RootTest", "test")))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	entries := recorded.FilterMessage("root get").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 'root get' entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["path"]; got != "/" {
		t.Fatalf("expected path '/', got %v", got)
	}
}

func TestOperationMetadata(t *testing.T) {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("RootTest", "test"))
	Register(api)

	item := api.OpenAPI().Paths["/"]
	if item == nil || item.Get == nil {
		t.Fatal("expected GET / in OpenAPI paths")
	}
	if item.Get.OperationID != "get-root" {
		t.Fatalf("expected operation get-root, got %q", item.Get.OperationID)
	}
	if item.Post != nil {
		t.Fatal("did not expect POST / to be registered")
	}
}
