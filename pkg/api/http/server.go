package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ecanizales/plandag/internal/application/coordinator"
	"github.com/ecanizales/plandag/internal/application/workers"
)

// Server represents the HTTP API server
type Server struct {
	router      *gin.Engine
	server      *http.Server
	coordinator *coordinator.Manager
	pool        *workers.Pool
	logger      *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Port        int
	Coordinator *coordinator.Manager
	Pool        *workers.Pool
	Logger      *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware())

	s := &Server{
		router:      router,
		coordinator: cfg.Coordinator,
		pool:        cfg.Pool,
		logger:      cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Planning endpoints
		v1.POST("/plans", s.handleComputePlan)
		v1.POST("/plans/dot", s.handleExportDOT)

		// Run endpoints
		v1.POST("/runs", s.handleSubmitRun)
		v1.GET("/runs/:id", s.handleGetRun)
		v1.GET("/runs/:id/status", s.handleGetStatus)
		v1.POST("/runs/:id/cancel", s.handleCancelRun)

		// Worker pool status
		v1.GET("/workers", s.handleListWorkers)
	}
}

// SetupWebSocket adds WebSocket handler to the server
func (s *Server) SetupWebSocket(handler interface {
	HandleRunStream(*gin.Context)
}) {
	s.router.GET("/api/v1/runs/:id/ws", handler.HandleRunStream)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

// requestLogger is a middleware for request logging
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}
