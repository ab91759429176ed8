package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/inventory-crud-api/internal/health"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/handler"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/middleware"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/response"
)

type Dependencies struct {
	ProductHandler    *handler.ProductHandler
	UserHandler       *handler.UserHandler
	CORSOrigins       []string
	APIRateLimitRPM   int
	GlobalRateLimiter GlobalRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(middleware.DefaultMaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.JSON(w, r, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "checks": results})
	})

	limiter := dep.GlobalRateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware()
	}

	r.Group(func(r chi.Router) {
		r.Use(limiter)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", dep.ProductHandler.List)
			r.Post("/", dep.ProductHandler.Create)
			r.Put("/{id}", dep.ProductHandler.Update)
			r.Delete("/{id}", dep.ProductHandler.Delete)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", dep.UserHandler.List)
			r.Post("/", dep.UserHandler.Create)
			r.Get("/{id}", dep.UserHandler.GetByID)
			r.Delete("/{id}", dep.UserHandler.Delete)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
