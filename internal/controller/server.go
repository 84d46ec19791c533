// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"net/http"
	"time"

	"catsync/internal/controller/handlers"
	"catsync/internal/controller/middleware"
)

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// Options configures the controller server.
type Options struct {
	Addr    string
	Store   handlers.StoreFactory
	Manager handlers.SyncManager
	// Schedules applies settings changes to the running scheduler.
	Schedules handlers.ScheduleRegistry
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// RateLimitRPS throttles authenticated calls per tenant; 0 disables.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new controller server.
func New(opts Options) *Server {
	h := handlers.New(opts.Store, opts.Manager, opts.Schedules)
	authMW := middleware.AuthMiddleware(opts.Store)
	rateMW := middleware.RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst)

	authed := func(handler http.HandlerFunc) http.Handler {
		return authMW(rateMW(handler))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /tenants", h.CreateTenant)

	// Public authenticated apis
	mux.Handle("POST /sync/trigger", authed(h.TriggerSync))
	mux.Handle("POST /sync/products", authed(h.ImportProducts))
	mux.Handle("POST /sync/cancel", authed(h.CancelSync))
	mux.Handle("GET /sync/status", authed(h.GetSyncStatus))
	mux.Handle("GET /sync/jobs", authed(h.ListJobs))
	mux.Handle("GET /sync/jobs/{id}", authed(h.GetJob))
	mux.Handle("GET /sync/settings", authed(h.GetSettings))
	mux.Handle("PUT /sync/settings", authed(h.UpdateSettings))
	mux.Handle("GET /mappings", authed(h.ListMappings))
	mux.Handle("GET /mappings/stats", authed(h.GetMappingStats))

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
