package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.POST("/", s.handleEvent)
	s.echo.GET("/healthz", s.handleLiveness)
	s.echo.GET("/readyz", s.handleReadiness)
	s.echo.GET("/stats/sentiment", s.handleSentimentStats)
	s.echo.GET("/stats/ideas", s.handleIdeaStats)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
