package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fam450/app"
	"fam450/domain/sampling"
	"fam450/internal"
)

// App represents the HTTP API
type App struct {
	router *chi.Mux
	server *http.Server
	tables *app.TableService
	config Config
	logger *internal.Logger
}

// Config holds HTTP application configuration
type Config struct {
	Port string
	// OVR and Grid apply when a request does not name its own.
	OVR  float64
	Grid sampling.Grid
}

// NewApp creates the HTTP application
func NewApp(config Config, tables *app.TableService, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	a := &App{
		router: chi.NewRouter(),
		tables: tables,
		config: config,
		logger: logger.Named("http"),
	}

	a.setupMiddleware()
	a.setupRoutes()

	a.server = &http.Server{
		Addr:              ":" + config.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/report", a.handleReport)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/deviations", a.handleDeviations)
		r.Get("/tables/{direction}", a.handleTable)
	})
}

// Handler exposes the router
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	a.logger.Info("Starting FAM 450 server on %s", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
