package ui

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"gopetro/internal"
	"gopetro/internal/api"
	"gopetro/internal/dataset"
	"gopetro/internal/session"
	"gopetro/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server represents the public web server: the plot page and its JSON API
type Server struct {
	router     *gin.Engine
	store      *dataset.Store
	sessions   *session.Manager
	hub        *api.SSEHub
	logger     *internal.Logger
	templates  *template.Template
	httpServer *http.Server
}

// NewServer creates the server and registers every route. The gin mode must
// be set by the caller beforehand.
func NewServer(store *dataset.Store, sessions *session.Manager, hub *api.SSEHub, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		store:     store,
		sessions:  sessions,
		hub:       hub,
		logger:    logger.Named("ui"),
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/report", s.handleReport)

	v := s.router.Group("/api")
	v.GET("/variables", s.handleVariables)
	v.GET("/categorize", s.handleCategorize)
	v.GET("/dataset", s.handleDataset)
	v.POST("/dataset/refresh", s.handleRefresh)

	v.POST("/sessions", s.handleCreateSession)
	sessions := v.Group("/sessions/:id", middleware.LoadSession(s.sessions))
	sessions.GET("/render", s.handleRender)
	sessions.POST("/axis", s.handleAxis)
	sessions.PUT("/selection", s.handleSelection)
	sessions.GET("/stats", s.handleStats)
	sessions.GET("/events", s.handleEvents)
	sessions.DELETE("", s.handleDeleteSession)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
