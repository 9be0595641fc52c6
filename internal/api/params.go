package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/employeepulse/internal/collector"
	"github.com/employeepulse/pkg/models"
)

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func queryRange(c echo.Context) (models.TimeRange, error) {
	r, err := models.ParseTimeRange(c.QueryParam("range"))
	if err != nil {
		return "", badRequest(err)
	}
	return r, nil
}

// channelOverride splits the comma-separated channel_ids parameter.
func channelOverride(c echo.Context) []string {
	raw := c.QueryParam("channel_ids")
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// queryLimit parses limit within [lo, hi], defaulting to def when absent.
func queryLimit(c echo.Context, def, lo, hi int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
	return n, nil
}

// coreError maps an aggregation failure to a response. Only a failure to
// resolve channels is attributable to upstream; cancellation means the
// client went away.
func coreError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, collector.ErrResolveChannels):
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("Channel resolution failed")
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to resolve channels")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Request cancelled")
	default:
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("Aggregation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Aggregation failed")
	}
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
