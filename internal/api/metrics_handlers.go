package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/employeepulse/pkg/models"
)

const (
	defaultEmojiLimit    = 10
	maxEmojiLimit        = 50
	defaultInsightsLimit = 5
	maxInsightsLimit     = 20
)

// getEntityTotals handles GET /api/v1/metrics/entity-totals
func (s *Server) getEntityTotals(c echo.Context) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	perspective, err := models.ParsePerspective(c.QueryParam("perspective"))
	if err != nil {
		return badRequest(err)
	}

	totals, err := s.deps.Metrics.EntityTotals(c.Request().Context(), r, perspective, channelOverride(c))
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, totals)
}

// getTopEmojis handles GET /api/v1/metrics/top-emojis
func (s *Server) getTopEmojis(c echo.Context) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	limit, err := queryLimit(c, defaultEmojiLimit, 1, maxEmojiLimit)
	if err != nil {
		return err
	}

	stats, err := s.deps.Metrics.TopEmojis(c.Request().Context(), r, limit, channelOverride(c))
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// getTeamInsights handles GET /api/v1/insights/teams
func (s *Server) getTeamInsights(c echo.Context) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	limit, err := queryLimit(c, defaultInsightsLimit, 1, maxInsightsLimit)
	if err != nil {
		return err
	}

	items, err := s.deps.Insights.TeamInsights(c.Request().Context(), r, limit, channelOverride(c))
	if err != nil {
		return coreError(c, err)
	}
	out := make([]models.Insight, len(items))
	for i, in := range items {
		out[i] = in.Rounded()
	}
	return c.JSON(http.StatusOK, out)
}

type analyzeRequest struct {
	Messages []models.Message `json:"messages"`
}

// analyzeMessages handles POST /api/v1/analysis/messages
func (s *Server) analyzeMessages(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	summary := s.deps.Analyzer.Analyze(c.Request().Context(), req.Messages)
	return c.JSON(http.StatusOK, summary.Rounded())
}
