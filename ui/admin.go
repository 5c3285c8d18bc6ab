package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"gopetro/internal"
	"gopetro/internal/dataset"
	"gopetro/internal/session"
)

// AdminApp serves health checks and pprof on a separate port
type AdminApp struct {
	router     *chi.Mux
	store      *dataset.Store
	sessions   *session.Manager
	logger     *internal.Logger
	httpServer *http.Server
}

// NewAdminApp creates the admin router
func NewAdminApp(store *dataset.Store, sessions *session.Manager, logger *internal.Logger) *AdminApp {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	app := &AdminApp{
		router:   chi.NewRouter(),
		store:    store,
		sessions: sessions,
		logger:   logger.Named("admin"),
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// setupMiddleware configures HTTP middleware
func (a *AdminApp) setupMiddleware() {
	a.router.Use(chimw.RequestID)
	a.router.Use(chimw.Recoverer)
}

// setupRoutes configures the admin routes
func (a *AdminApp) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/readyz", a.handleReady)
	a.router.Mount("/debug", chimw.Profiler())
}

// Handler exposes the router, mainly for tests
func (a *AdminApp) Handler() http.Handler {
	return a.router
}

func (a *AdminApp) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady is ready once a dataset has been published
func (a *AdminApp) handleReady(w http.ResponseWriter, r *http.Request) {
	ds := a.store.Current()
	if ds == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"ready": false})
		return
	}
	resp := map[string]interface{}{
		"ready":    true,
		"version":  ds.Version(),
		"samples":  ds.Len(),
		"excluded": len(ds.Excluded()),
		"age":      ds.BuiltAt().Age(time.Now()).Round(time.Second).String(),
	}
	if a.sessions != nil {
		resp["sessions"] = a.sessions.Count()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start serves on addr until Shutdown is called
func (a *AdminApp) Start(addr string) error {
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logger.Info("Admin endpoints on %s (/healthz, /readyz, /debug/pprof)", addr)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the admin server
func (a *AdminApp) Shutdown(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	return a.httpServer.Shutdown(ctx)
}
