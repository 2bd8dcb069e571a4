// ABOUTME: HTTP and WebSocket feed for the dashboard view layer.
// ABOUTME: Serves chart data from a live Syncer and forwards writes to storage.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/classdash/internal/seed"
	"github.com/harperreed/classdash/internal/storage"
	"github.com/harperreed/classdash/internal/sync"
)

// Server exposes the dashboard over HTTP.
type Server struct {
	repo   storage.Repository
	syncer *sync.Syncer
	seed   seed.Func
	log    *log.Logger
	router *gin.Engine
}

// NewServer builds the router. The syncer should already be started.
func NewServer(repo storage.Repository, syncer *sync.Syncer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		repo:   repo,
		syncer: syncer,
		seed:   seed.Seed,
		log:    logger,
		router: gin.New(),
	}

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	s.router.Use(gin.Recovery(), s.requestLogger(), cors.New(config))

	api := s.router.Group("/api")
	{
		api.GET("/dashboard", s.handleDashboard)
		api.GET("/dashboard/chart", s.handleChart)
		api.GET("/dashboard/summary", s.handleSummary)
		api.POST("/dashboard/seed", s.handleSeed)
		api.POST("/dashboard/refresh", s.handleRefresh)

		api.GET("/tables/:table", s.handleListTable)
		api.POST("/tables/:table", s.handleCreate)
		api.DELETE("/tables/:table", s.handleClear)
		api.PUT("/tables/:table/:id", s.handleUpdate)
		api.DELETE("/tables/:table/:id", s.handleDelete)
	}

	s.router.GET("/ws/dashboard", s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard feed listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
