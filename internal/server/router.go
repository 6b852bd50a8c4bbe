// Package server assembles the public and admin HTTP handlers and runs their listeners.
package server

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/devsecops-backend/internal/config"
	"github.com/janisto/devsecops-backend/internal/http/health"
	"github.com/janisto/devsecops-backend/internal/http/root"
	applog "github.com/janisto/devsecops-backend/internal/platform/logging"
	"github.com/janisto/devsecops-backend/internal/platform/metrics"
	appmiddleware "github.com/janisto/devsecops-backend/internal/platform/middleware"
	"github.com/janisto/devsecops-backend/internal/platform/respond"
)

// Title names the API in its OpenAPI document.
const Title = "DevSecOps Backend"

// NewPublic builds the public router: the root operation behind the full
// middleware stack. It also returns the huma API so its OpenAPI document can be
// served elsewhere; the public listener itself exposes no documentation routes.
func NewPublic(cfg *config.Config, m *metrics.Metrics, version string) (http.Handler, huma.API) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(appmiddleware.SecurityOptions{HSTS: cfg.TLS.Enabled()}),
		appmiddleware.Vary(),
		respond.NegotiateAccept(),
		appmiddleware.CORS(cfg.CORSAllowedOrigins),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For / X-Real-IP. Only deploy behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(cfg.MaxBodyBytes),
		applog.RequestLogger(cfg.ProjectID),
		applog.AccessLogger(),
		m.Middleware(),
		respond.Recoverer(),
	)

	api := humachi.New(router, apiConfig(version))
	advertiseCBOR(api)
	root.Register(api)

	return router, api
}

func apiConfig(version string) huma.Config {
	cfg := huma.DefaultConfig(Title, version)
	cfg.Info.Description = "Minimal backend that reports it is running."
	cfg.OpenAPIPath = ""
	cfg.DocsPath = ""
	cfg.SchemasPath = ""
	// Drops the schema link transformer so bodies carry no "$schema" field.
	cfg.CreateHooks = nil
	return cfg
}

// advertiseCBOR mirrors every JSON media type in the OpenAPI document as CBOR,
// which the cbor format import makes available at runtime.
func advertiseCBOR(api huma.API) {
	oapi := api.OpenAPI()
	oapi.OnAddOperation = append(oapi.OnAddOperation, func(_ *huma.OpenAPI, op *huma.Operation) {
		if op.RequestBody != nil && op.RequestBody.Content != nil {
			if c, ok := op.RequestBody.Content["application/json"]; ok {
				op.RequestBody.Content["application/cbor"] = c
			}
		}
		for _, resp := range op.Responses {
			if resp.Content == nil {
				continue
			}
			if c, ok := resp.Content["application/json"]; ok {
				resp.Content["application/cbor"] = c
			}
		}
	})
}

// NewAdmin builds the operational router: probes, metrics and the public API's
// OpenAPI document.
func NewAdmin(api huma.API, m *metrics.Metrics, checker *health.Checker) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	router.Use(
		appmiddleware.RequestID(),
		applog.RequestLogger(""),
		respond.Recoverer(),
	)

	router.Get("/health", checker.Live)
	router.Get("/ready", checker.Ready)
	router.Method(http.MethodGet, "/metrics", m.Handler())
	router.Get("/openapi.json", openAPIHandler(api, "application/openapi+json", func(o *huma.OpenAPI) ([]byte, error) {
		return o.MarshalJSON()
	}))
	router.Get("/openapi.yaml", openAPIHandler(api, "application/openapi+yaml", func(o *huma.OpenAPI) ([]byte, error) {
		return o.YAML()
	}))
	return router
}

func openAPIHandler(api huma.API, contentType string, encode func(*huma.OpenAPI) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := encode(api.OpenAPI())
		if err != nil {
			respond.WriteProblem(w, r, http.StatusInternalServerError, "failed to render OpenAPI document", err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}
}
