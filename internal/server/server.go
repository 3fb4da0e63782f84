package server

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/spacesedan/ideaflow/internal/models"
)

type RequestHandler interface {
	Handle(ctx context.Context, req models.IntelligenceRequestEvent) (models.IntelligenceResultEvent, error)
}

type StatsStore interface {
	SentimentStats(ctx context.Context) (models.SentimentStatsResponse, error)
	IdeaStats(ctx context.Context) (models.IdeaStatsResponse, error)
}

type Server struct {
	echo    *echo.Echo
	addr    string
	handler RequestHandler
	stats   StatsStore
	ready   *atomic.Bool
	timeout time.Duration
}

// NewServer wires the HTTP routes. ready backs /readyz and is typically
// owned by a monitoring.Monitor.
func NewServer(addr string, handler RequestHandler, stats StatsStore, ready *atomic.Bool, timeout time.Duration) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.Debug("[HTTP] request", attrs...)
			return nil
		},
	}))

	srv := &Server{
		echo:    e,
		addr:    addr,
		handler: handler,
		stats:   stats,
		ready:   ready,
		timeout: timeout,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("[Server] Starting server", slog.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
