package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/employeepulse/internal/dashboard"
	"github.com/employeepulse/internal/insights"
	"github.com/employeepulse/internal/logging"
	"github.com/employeepulse/internal/metrics"
	"github.com/employeepulse/internal/slack"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services the HTTP surface exposes.
type Deps struct {
	Provider  slack.Provider
	Dashboard *dashboard.Service
	Metrics   *metrics.Service
	Insights  *insights.Synthesizer
	Analyzer  metrics.Analyzer
}

// Server represents the API server
type Server struct {
	echo *echo.Echo
	port int
	deps Deps
}

// NewServer creates a new API server. Empty corsOrigins allows any origin.
func NewServer(port int, corsOrigins []string, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(logging.RequestLogger())
	e.Use(middleware.Recover())
	if len(corsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: corsOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	server := &Server{
		echo: e,
		port: port,
		deps: deps,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.health)

	// API v1 group
	v1 := s.echo.Group("/api/v1")
	v1.GET("/health", s.health)

	dash := v1.Group("/dashboard")
	dash.GET("/trend", s.getTrend)
	dash.GET("/channels", s.getChannelMetrics)
	dash.GET("/kpi", s.getKPI)
	dash.GET("/burnout-series", s.getBurnoutSeries)
	dash.GET("/heatmap", s.getHeatmap)

	m := v1.Group("/metrics")
	m.GET("/entity-totals", s.getEntityTotals)
	m.GET("/top-emojis", s.getTopEmojis)

	v1.GET("/insights/teams", s.getTeamInsights)
	v1.POST("/analysis/messages", s.analyzeMessages)

	sl := v1.Group("/slack")
	sl.GET("/connection", s.getConnection)
	sl.GET("/channels", s.listChannels)
	sl.GET("/users", s.listUsers)
	sl.GET("/selected-channels", s.getSelectedChannels)
	sl.PUT("/selected-channels", s.putSelectedChannels)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", s.port).Msg("API server listening")
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
