package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/employeepulse/pkg/models"
)

// getTrend handles GET /api/v1/dashboard/trend
func (s *Server) getTrend(c echo.Context) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	points, err := s.deps.Dashboard.Trend(c.Request().Context(), r, channelOverride(c))
	if err != nil {
		return coreError(c, err)
	}
	out := make([]models.SentimentPoint, len(points))
	for i, p := range points {
		out[i] = p.Rounded()
	}
	return c.JSON(http.StatusOK, out)
}

// getChannelMetrics handles GET /api/v1/dashboard/channels
func (s *Server) getChannelMetrics(c echo.Context) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	rows, err := s.deps.Dashboard.ChannelMetrics(c.Request().Context(), r, channelOverride(c))
	if err != nil {
		return coreError(c, err)
	}
	out := make([]models.ChannelMetric, len(rows))
	for i, m := range rows {
		out[i] = m.Rounded()
	}
	return c.JSON(http.StatusOK, out)
}

// getKPI handles GET /api/v1/dashboard/kpi
func (s *Server) getKPI(c echo.Context) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	kpi, err := s.deps.Dashboard.KPI(c.Request().Context(), r, channelOverride(c))
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, kpi.Rounded())
}

// getBurnoutSeries handles GET /api/v1/dashboard/burnout-series
func (s *Server) getBurnoutSeries(c echo.Context) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	group := c.QueryParam("group")
	switch group {
	case "":
		group = "team"
	case "team", "person":
	default:
		return badRequest(fmt.Errorf("invalid group %q: must be one of team, person", group))
	}

	series, err := s.deps.Dashboard.BurnoutSeries(c.Request().Context(), r, group, channelOverride(c))
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, series)
}

// getHeatmap handles GET /api/v1/dashboard/heatmap
func (s *Server) getHeatmap(c echo.Context) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	grouping, err := models.ParseGrouping(c.QueryParam("grouping"))
	if err != nil {
		return badRequest(err)
	}
	metric, err := models.ParseHeatmapMetric(c.QueryParam("metric"))
	if err != nil {
		return badRequest(err)
	}

	matrix, err := s.deps.Metrics.Heatmap(c.Request().Context(), grouping, metric, r, channelOverride(c))
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, matrix.Rounded())
}
