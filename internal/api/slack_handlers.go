package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/employeepulse/pkg/models"
)

// getConnection handles GET /api/v1/slack/connection
func (s *Server) getConnection(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Provider.Connection(c.Request().Context()))
}

// listChannels handles GET /api/v1/slack/channels
func (s *Server) listChannels(c echo.Context) error {
	channels, err := s.deps.Provider.ListChannels(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("Failed to list channels")
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to list channels")
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	return c.JSON(http.StatusOK, channels)
}

// listUsers handles GET /api/v1/slack/users
func (s *Server) listUsers(c echo.Context) error {
	users, err := s.deps.Provider.ListUsers(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("Failed to list users")
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(http.StatusOK, users)
}

type selectedChannelsResponse struct {
	Channels []models.Channel `json:"channels"`
}

type selectChannelsRequest struct {
	ChannelIDs []string `json:"channel_ids"`
}

// getSelectedChannels handles GET /api/v1/slack/selected-channels
func (s *Server) getSelectedChannels(c echo.Context) error {
	channels, err := s.deps.Provider.SelectedChannels(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("Failed to load selected channels")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load selected channels")
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	return c.JSON(http.StatusOK, selectedChannelsResponse{Channels: channels})
}

// putSelectedChannels handles PUT /api/v1/slack/selected-channels
func (s *Server) putSelectedChannels(c echo.Context) error {
	var req selectChannelsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	ctx := c.Request().Context()
	if err := s.deps.Provider.SelectChannels(ctx, req.ChannelIDs); err != nil {
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("Failed to save selected channels")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save selected channels")
	}
	log.Info().Int("count", len(req.ChannelIDs)).Msg("Updated channel selection")
	return s.getSelectedChannels(c)
}
