// Package metrics computes entity totals, emoji rankings and heatmaps over
// the resolved channel set.
package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/employeepulse/internal/collector"
	"github.com/employeepulse/internal/slack"
	"github.com/employeepulse/internal/timebucket"
	"github.com/employeepulse/pkg/models"
)

// Analyzer produces an AnalysisSummary for a message set and never fails.
type Analyzer interface {
	Analyze(ctx context.Context, messages []models.Message) models.AnalysisSummary
}

type Service struct {
	collector *collector.Collector
	analyzer  Analyzer
	teams     TeamMapper
	now       func() time.Time
}

func NewService(c *collector.Collector, analyzer Analyzer, teams TeamMapper, now func() time.Time) *Service {
	if teams == nil {
		teams = PlaceholderTeamMapper{}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{collector: c, analyzer: analyzer, teams: teams, now: now}
}

// EntityTotals aggregates the range window per channel, team or employee.
func (s *Service) EntityTotals(ctx context.Context, r models.TimeRange, perspective models.Perspective, override []string) ([]models.EntityTotal, error) {
	channels, lists, err := s.fetchWindow(ctx, r, override)
	if err != nil {
		return nil, err
	}

	switch perspective {
	case models.PerspectiveEmployee:
		return EmployeeTotals(lists, s.users(ctx)), nil
	case models.PerspectiveTeam:
		if s.teams.Placeholder() {
			log.Debug().Msg("No team mapping configured; team totals use placeholder grouping")
		}
		return TeamTotals(lists, s.teams), nil
	default:
		return ChannelTotals(channels, lists), nil
	}
}

// TopEmojis ranks reactions across the range window.
func (s *Service) TopEmojis(ctx context.Context, r models.TimeRange, limit int, override []string) ([]models.EmojiStat, error) {
	_, lists, err := s.fetchWindow(ctx, r, override)
	if err != nil {
		return nil, err
	}
	return TopEmojis(flatten(lists), limit), nil
}

// Heatmap fetches the full bucketed span once per channel and partitions it.
func (s *Service) Heatmap(ctx context.Context, grouping models.Grouping, metric models.HeatmapMetric, r models.TimeRange, override []string) (models.HeatmapMatrix, error) {
	buckets, err := timebucket.Buckets(r, s.now())
	if err != nil {
		return models.HeatmapMatrix{}, err
	}

	channels, err := s.collector.ResolveChannels(ctx, override)
	if err != nil {
		return models.HeatmapMatrix{}, err
	}
	q := slack.HistoryQuery{Oldest: buckets[0].Start, Latest: buckets[len(buckets)-1].End}
	lists, err := s.collector.Fetch(ctx, channels, q)
	if err != nil {
		return models.HeatmapMatrix{}, err
	}

	var users map[string]models.User
	if grouping == models.GroupPeople {
		users = s.users(ctx)
	}
	rows := heatmapRows(grouping, channels, lists, users, s.teams)

	log.Debug().
		Str("grouping", string(grouping)).
		Str("metric", string(metric)).
		Str("range", string(r)).
		Int("rows", len(rows)).
		Msg("Building heatmap")
	return buildHeatmap(ctx, rows, buckets, metric, s.analyzer, s.collector.Concurrency())
}

func (s *Service) fetchWindow(ctx context.Context, r models.TimeRange, override []string) ([]models.Channel, [][]models.Message, error) {
	channels, err := s.collector.ResolveChannels(ctx, override)
	if err != nil {
		return nil, nil, err
	}
	w := timebucket.Window(r, s.now())
	lists, err := s.collector.Fetch(ctx, channels, slack.HistoryQuery{Oldest: w.Start, Latest: w.End})
	if err != nil {
		return nil, nil, err
	}
	return channels, lists, nil
}

func (s *Service) users(ctx context.Context) map[string]models.User {
	list, err := s.collector.Provider().ListUsers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list users; falling back to ids as names")
	}
	out := make(map[string]models.User, len(list))
	for _, u := range list {
		out[u.ID] = u
	}
	return out
}
