// Package server exposes the simulation over HTTP: snapshots, telemetry,
// ranked episodes, metrics and lifecycle/settings control.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lixenwraith/fusion-sim/advisor"
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/engine"
	"github.com/lixenwraith/fusion-sim/logging"
	"github.com/lixenwraith/fusion-sim/status"
)

const shutdownTimeout = 5 * time.Second

// EpisodeLister is the read side of episode persistence
type EpisodeLister interface {
	TopEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error)
	RecentEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error)
}

// Consulter runs one advisory round trip and applies the result
type Consulter interface {
	Consult(ctx context.Context) (advisor.Advice, error)
}

// Options carries optional collaborators; nil ones disable their routes with 503
type Options struct {
	Episodes  EpisodeLister
	Consulter Consulter
	Registry  *status.Registry
	Logger    *slog.Logger
	// Mode is the gin mode; empty keeps the current global mode
	Mode string
}

// Server is the HTTP front of one controller
type Server struct {
	ctrl      *engine.Controller
	episodes  EpisodeLister
	consulter Consulter
	registry  *status.Registry
	logger    *slog.Logger
	router    *gin.Engine
}

// New builds the router for ctrl
func New(ctrl *engine.Controller, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	s := &Server{
		ctrl:      ctrl,
		episodes:  opts.Episodes,
		consulter: opts.Consulter,
		registry:  opts.Registry,
		logger:    logging.OrDiscard(opts.Logger),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(cors)
	s.routes(r)
	s.router = r
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/telemetry", s.getTelemetry)
		api.GET("/telemetry/history", s.getHistory)
		api.GET("/episodes", s.getEpisodes)
		api.GET("/metrics", s.getMetrics)

		control := api.Group("/control")
		{
			control.POST("/start", s.start)
			control.POST("/stop", s.stop)
			control.POST("/reset", s.reset)
		}

		api.PUT("/settings", s.putSettings)
		api.POST("/advice", s.postAdvice)
		api.POST("/advice/consult", s.consult)
	}
}

// Handler returns the router as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// cors allows browser dashboards on other origins
func cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}
