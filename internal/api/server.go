package api

import (
	"net/http"
	"time"

	adminapi "github.com/futig/interview-backend/internal/api/admin"
	"github.com/futig/interview-backend/internal/api/docs"
	"github.com/futig/interview-backend/internal/api/middleware"
	reportapi "github.com/futig/interview-backend/internal/api/report"
	sessionapi "github.com/futig/interview-backend/internal/api/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Session *sessionapi.Handler
	Report  *reportapi.Handler
	Admin   *adminapi.Handler
}

// RouterOptions configures the middleware stack
type RouterOptions struct {
	RequestTimeout time.Duration
	AllowedOrigins string
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(handlers Handlers, opts RouterOptions, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                    // Recover from panics
	r.Use(chimiddleware.RequestID)                    // Add request ID
	r.Use(middleware.Logger(logger))                  // Log requests
	r.Use(middleware.CORS(opts.AllowedOrigins))       // Handle CORS
	r.Use(chimiddleware.Timeout(opts.RequestTimeout)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	sessionapi.RegisterRoutes(r, handlers.Session)
	reportapi.RegisterRoutes(r, handlers.Report)
	adminapi.RegisterRoutes(r, handlers.Admin)

	return r
}
