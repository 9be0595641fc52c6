package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/employeepulse/internal/collector"
	"github.com/employeepulse/internal/config"
	"github.com/employeepulse/internal/dashboard"
	"github.com/employeepulse/internal/insights"
	"github.com/employeepulse/internal/llm"
	"github.com/employeepulse/internal/logging"
	"github.com/employeepulse/internal/metrics"
	"github.com/employeepulse/internal/slack"
)

// services is everything a command may need, built from one Config.
type services struct {
	provider  slack.Provider
	llm       *llm.Client
	dashboard *dashboard.Service
	metrics   *metrics.Service
	insights  *insights.Synthesizer
	close     func()
}

// loadConfig loads, validates and applies the logging section.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildServices(ctx context.Context, cfg *config.Config) (*services, error) {
	store, closeStore, err := openSelectionStore(ctx, cfg.State)
	if err != nil {
		return nil, err
	}

	var provider slack.Provider
	if cfg.Slack.BotToken != "" {
		provider = slack.NewWebProvider(slack.WebOptions{
			Token:             cfg.Slack.BotToken,
			BaseURL:           cfg.Slack.BaseURL,
			TeamID:            cfg.Slack.TeamID,
			TeamName:          cfg.Slack.TeamName,
			HistoryLimit:      cfg.Slack.HistoryLimit,
			RequestsPerSecond: cfg.Slack.RequestsPerSecond,
		}, store)
		log.Info().Str("team", cfg.Slack.TeamID).Msg("Using Slack Web API provider")
	} else {
		provider = slack.NewDemoProvider(cfg.Slack.TeamID, cfg.Slack.TeamName, store, time.Now)
		log.Info().Msg("No Slack bot token configured; serving demo workspace data")
	}

	client, err := llm.NewFromConfig(cfg.LLM)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	coll := collector.New(provider, cfg.Aggregation.Concurrency)
	teams := metrics.NewTeamMapper(cfg.Teams)
	if teams.Placeholder() {
		log.Info().Msg("No team mapping configured; team views use placeholder grouping")
	}

	return &services{
		provider:  provider,
		llm:       client,
		dashboard: dashboard.NewService(coll, client, time.Now),
		metrics:   metrics.NewService(coll, client, teams, time.Now),
		insights:  insights.NewSynthesizer(coll, client, time.Now),
		close:     closeStore,
	}, nil
}

func openSelectionStore(ctx context.Context, cfg config.StateConfig) (slack.SelectionStore, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		store, err := slack.OpenPostgresSelectionStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open selection database: %w", err)
		}
		log.Info().Msg("Channel selections stored in Postgres")
		return store, store.Close, nil
	case cfg.File != "":
		log.Info().Str("file", cfg.File).Msg("Channel selections stored in file")
		return slack.NewFileSelectionStore(cfg.File), func() {}, nil
	default:
		log.Warn().Msg("No state store configured; channel selections are kept in memory")
		return slack.NewMemorySelectionStore(), func() {}, nil
	}
}
