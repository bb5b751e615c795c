// Package rest exposes the mind map service over HTTP.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	_ "github.com/ndstyle/mindflow2/docs"
	"github.com/ndstyle/mindflow2/interfaces/http/rest/handlers"
	"github.com/ndstyle/mindflow2/interfaces/http/rest/middleware"
	"github.com/ndstyle/mindflow2/pkg/auth"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// Pinger is implemented by stores that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Metrics is the collector used by the router. Nil disables /metrics.
type Metrics interface {
	middleware.HTTPRecorder
	Handler() http.Handler
}

// RouterConfig carries the router's collaborators.
type RouterConfig struct {
	MindMaps       *handlers.MindMapHandler
	Verifier       auth.Verifier
	Errors         *pkgerrors.ErrorHandler
	Metrics        Metrics
	Readiness      Pinger
	AllowedOrigins []string
	Logger         *zap.Logger
}

// Router creates and configures the HTTP router
type Router struct {
	cfg RouterConfig
}

// NewRouter creates a new router instance
func NewRouter(cfg RouterConfig) *Router {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Router{cfg: cfg}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()
	logger := rt.cfg.Logger

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.cfg.Errors.Middleware)
	router.Use(middleware.Logger(logger))
	if rt.cfg.Metrics != nil {
		router.Use(middleware.Metrics(rt.cfg.Metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Get("/swagger/doc.json", rt.apiDocs)
	if rt.cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.cfg.Metrics.Handler())
	}

	h := rt.cfg.MindMaps

	// Shared view links are public.
	router.Get("/map/temp", h.OpenShared)

	router.Route("/api/v1/mindmaps", func(r chi.Router) {
		// Stateless transforms work for anonymous callers too.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(rt.cfg.Verifier))
			r.Post("/generate", h.Generate)
			r.Post("/analyze", h.Analyze)
			r.Post("/export.{format}", h.ExportDocument)
			r.Post("/share", h.ShareDocument)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.cfg.Verifier, rt.cfg.Errors, logger))

			r.Get("/", h.List)
			r.Post("/", h.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Put("/", h.Update)
				r.Delete("/", h.Delete)

				r.Get("/analysis", h.Analysis)
				r.Get("/export.{format}", h.Export)
				r.Get("/share", h.Share)

				r.Post("/nodes", h.AddNode)
				r.Patch("/nodes/{nodeID}", h.UpdateNode)
				r.Delete("/nodes/{nodeID}", h.DeleteNode)

				r.Post("/edges", h.Connect)
				r.Delete("/edges/{edgeID}", h.Disconnect)
			})
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// apiDocs serves the OpenAPI document generated from the handler annotations.
func (rt *Router) apiDocs(w http.ResponseWriter, req *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		rt.cfg.Errors.Handle(w, req, pkgerrors.NewInternalError("failed to render API docs").WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// readinessCheck pings the store when it supports it.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if rt.cfg.Readiness != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := rt.cfg.Readiness.Ping(ctx); err != nil {
			rt.cfg.Logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
