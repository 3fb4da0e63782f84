package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spacesedan/ideaflow/internal/metrics"
	"github.com/spacesedan/ideaflow/internal/streams"
)

type errorResponse struct {
	Error string `json:"error"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

func (s *Server) handleEvent(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid payload: %v", err)})
	}

	req, err := streams.ParseRequest(body)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("http", "invalid").Inc()
		slog.Warn("[Server] invalid cloud event payload", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid payload: %v", err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	event, err := s.handler.Handle(ctx, req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("http", "publish_error").Inc()
		slog.Error("[Server] failed to publish intelligence result event",
			slog.String("question_id", req.QuestionID),
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to publish result event"})
	}

	outcome := "success"
	if !event.Success {
		outcome = "analysis_error"
	}
	metrics.RequestsTotal.WithLabelValues("http", outcome).Inc()

	return c.JSON(http.StatusAccepted, acceptedResponse{Accepted: true})
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleReadiness(c echo.Context) error {
	if s.ready != nil && !s.ready.Load() {
		return c.String(http.StatusServiceUnavailable, "not ready")
	}
	return c.String(http.StatusOK, "ready")
}

func (s *Server) handleSentimentStats(c echo.Context) error {
	stats, err := s.stats.SentimentStats(c.Request().Context())
	if err != nil {
		metrics.StoreErrors.WithLabelValues("sentiment_stats").Inc()
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("failed to query sentiment stats: %v", err)})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleIdeaStats(c echo.Context) error {
	stats, err := s.stats.IdeaStats(c.Request().Context())
	if err != nil {
		metrics.StoreErrors.WithLabelValues("idea_stats").Inc()
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("failed to query ideas stats: %v", err)})
	}
	return c.JSON(http.StatusOK, stats)
}
