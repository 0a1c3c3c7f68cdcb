package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/byusi/indexfo/pkg/config"
	"github.com/byusi/indexfo/pkg/fsindex"
	"github.com/byusi/indexfo/pkg/sysstats"
)

// Server serves the directory index UI and its JSON APIs.
type Server struct {
	config    *config.Config
	logger    *logrus.Logger
	resolver  *fsindex.Resolver
	scanner   *fsindex.Scanner
	stats     sysstats.Provider
	template  string
	protected map[string]struct{}
	fallback  []fallbackRule
	engine    *gin.Engine
	server    *http.Server
}

// New creates a server rooted at cfg.Data.Root. The HTML template, the
// protected path set and the fallback route table are built once here and
// never mutated afterwards, so they are safe to share across handlers.
func New(cfg *config.Config, logger *logrus.Logger, stats sysstats.Provider) (*Server, error) {
	resolver, err := fsindex.NewResolver(cfg.Data.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to create path resolver: %w", err)
	}

	// Set gin mode based on log level
	if logger.Level == logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(recoveryMiddleware(logger, cfg.Server.ExposeErrors))
	engine.Use(ginLogger(logger))

	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware("indexfo"))
	}

	engine.Use(corsMiddleware())

	protected := make(map[string]struct{}, len(cfg.Data.ProtectedPaths))
	for _, p := range cfg.Data.ProtectedPaths {
		protected[p] = struct{}{}
	}

	srv := &Server{
		config:    cfg,
		logger:    logger,
		resolver:  resolver,
		scanner:   fsindex.NewScanner(resolver),
		stats:     stats,
		template:  loadTemplate(cfg.Data.TemplateFile, logger),
		protected: protected,
		engine:    engine,
	}
	srv.fallback = srv.fallbackRules()

	// Protected paths win over every route, including the APIs.
	engine.Use(srv.protectedPathMiddleware())

	srv.setupRoutes()

	return srv, nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler: s.engine,
	}

	s.logger.Infof("Starting server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Engine returns the gin engine for testing purposes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Resolver exposes the containment layer, mainly for tests.
func (s *Server) Resolver() *fsindex.Resolver {
	return s.resolver
}

// setupRoutes configures all HTTP routes. Everything not matched here falls
// through to the ordered fallback rule table.
func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleIndex)

	s.engine.GET("/api/files", s.handleFiles)
	s.engine.GET("/api/navigate", s.handleFiles)
	s.engine.GET("/api/stats", s.handleStats)

	s.engine.GET("/download/*filepath", s.handleDownload)

	s.engine.NoRoute(s.handleFallback)
}
