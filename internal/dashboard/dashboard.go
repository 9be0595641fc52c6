// Package dashboard composes bucketing, fetching and analysis into the
// dashboard series: sentiment trend, channel metrics, KPI and burnout.
package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/employeepulse/internal/collector"
	"github.com/employeepulse/internal/metrics"
	"github.com/employeepulse/internal/slack"
	"github.com/employeepulse/internal/timebucket"
	"github.com/employeepulse/pkg/models"
)

const (
	dateLayout         = "2006-01-02"
	burnoutSeriesLabel = "Channels"
	messagesPerThread  = 5
)

type Service struct {
	collector *collector.Collector
	analyzer  metrics.Analyzer
	now       func() time.Time
}

func NewService(c *collector.Collector, analyzer metrics.Analyzer, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{collector: c, analyzer: analyzer, now: now}
}

// Trend emits one point per bucket, oldest first. Each bucket is fetched
// with its own [start, end) window and analysed as a whole.
func (s *Service) Trend(ctx context.Context, r models.TimeRange, override []string) ([]models.SentimentPoint, error) {
	buckets, err := timebucket.Buckets(r, s.now())
	if err != nil {
		return nil, err
	}
	channels, err := s.collector.ResolveChannels(ctx, override)
	if err != nil {
		return nil, err
	}

	points := make([]models.SentimentPoint, len(buckets))
	err = collector.Each(ctx, len(buckets), s.collector.Concurrency(), func(ctx context.Context, i int) error {
		b := buckets[i]
		lists, err := s.collector.Fetch(ctx, channels, slack.HistoryQuery{Oldest: b.Start, Latest: b.End})
		if err != nil {
			return err
		}
		msgs := collector.Merge(lists)

		point := models.SentimentPoint{Date: b.End.Format(dateLayout), Label: b.Label}
		if len(msgs) > 0 {
			summary := s.analyzer.Analyze(ctx, msgs)
			if err := ctx.Err(); err != nil {
				return err
			}
			point.AvgSentiment = summary.OverallSentiment
			point.MessageCount = len(msgs)
		}
		log.Debug().
			Str("range", string(r)).
			Str("bucket", b.Label).
			Int("messages", len(msgs)).
			Msg("Trend bucket analysed")
		points[i] = point
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

type channelAnalysis struct {
	channel  models.Channel
	messages []models.Message
	summary  models.AnalysisSummary
}

// analyzeChannels fetches the range window per channel and analyses every
// channel that has messages.
func (s *Service) analyzeChannels(ctx context.Context, r models.TimeRange, override []string) ([]channelAnalysis, error) {
	channels, err := s.collector.ResolveChannels(ctx, override)
	if err != nil {
		return nil, err
	}
	w := timebucket.Window(r, s.now())
	lists, err := s.collector.Fetch(ctx, channels, slack.HistoryQuery{Oldest: w.Start, Latest: w.End})
	if err != nil {
		return nil, err
	}

	out := make([]channelAnalysis, len(channels))
	err = collector.Each(ctx, len(channels), s.collector.Concurrency(), func(ctx context.Context, i int) error {
		a := channelAnalysis{channel: channels[i], messages: lists[i]}
		if len(a.messages) > 0 {
			a.summary = s.analyzer.Analyze(ctx, a.messages)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		out[i] = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChannelMetrics reports one row per resolved channel in resolution order.
func (s *Service) ChannelMetrics(ctx context.Context, r models.TimeRange, override []string) ([]models.ChannelMetric, error) {
	analyses, err := s.analyzeChannels(ctx, r, override)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]models.ChannelMetric, 0, len(analyses))
	for _, a := range analyses {
		m := models.ChannelMetric{
			ID:           a.channel.ID,
			Name:         a.channel.Name,
			Messages:     len(a.messages),
			Threads:      len(a.messages) / messagesPerThread,
			LastActivity: now,
			Risk:         models.RiskLow,
		}
		if len(a.messages) > 0 {
			m.AvgSentiment = a.summary.OverallSentiment
			if a.summary.BurnoutRiskLevel.Valid() {
				m.Risk = a.summary.BurnoutRiskLevel
			}
			m.LastActivity = latest(a.messages)
		}
		out = append(out, m)
	}
	return out, nil
}

// KPI averages channel sentiment over channels with messages and counts the
// Medium and High risk channels among them.
func (s *Service) KPI(ctx context.Context, r models.TimeRange, override []string) (models.KPI, error) {
	analyses, err := s.analyzeChannels(ctx, r, override)
	if err != nil {
		return models.KPI{}, err
	}

	var kpi models.KPI
	var sum float64
	for _, a := range analyses {
		if len(a.messages) == 0 {
			continue
		}
		kpi.MonitoredChannels++
		sum += a.summary.OverallSentiment
		if a.summary.BurnoutRiskLevel.Ordinal() >= models.RiskMedium.Ordinal() {
			kpi.BurnoutRiskCount++
		}
	}
	if kpi.MonitoredChannels > 0 {
		kpi.AvgSentiment = sum / float64(kpi.MonitoredChannels)
	}

	log.Info().
		Str("range", string(r)).
		Int("channels", len(analyses)).
		Int("monitored", kpi.MonitoredChannels).
		Int("at_risk", kpi.BurnoutRiskCount).
		Msg("Computed KPI")
	return kpi, nil
}

// BurnoutSeries reports a per-bucket risk ordinal for every resolved channel.
// Channels stand in for the requested group, which is echoed back so the
// substitution is visible to clients.
func (s *Service) BurnoutSeries(ctx context.Context, r models.TimeRange, group string, override []string) (models.BurnoutSeries, error) {
	buckets, err := timebucket.Buckets(r, s.now())
	if err != nil {
		return models.BurnoutSeries{}, err
	}
	channels, err := s.collector.ResolveChannels(ctx, override)
	if err != nil {
		return models.BurnoutSeries{}, err
	}
	q := slack.HistoryQuery{Oldest: buckets[0].Start, Latest: buckets[len(buckets)-1].End}
	lists, err := s.collector.Fetch(ctx, channels, q)
	if err != nil {
		return models.BurnoutSeries{}, err
	}

	series := make([]models.EntityBurnoutSeries, len(channels))
	cells := make([][][]models.Message, len(channels))
	for i, ch := range channels {
		series[i] = models.EntityBurnoutSeries{ID: ch.ID, Name: ch.Name, Points: make([]models.BurnoutPoint, len(buckets))}
		for j, b := range buckets {
			series[i].Points[j] = models.BurnoutPoint{Label: b.Label}
		}
		cells[i] = metrics.Partition(lists[i], buckets)
	}

	cols := len(buckets)
	err = collector.Each(ctx, len(channels)*cols, s.collector.Concurrency(), func(ctx context.Context, k int) error {
		i, j := k/cols, k%cols
		if len(cells[i][j]) == 0 {
			return nil
		}
		summary := s.analyzer.Analyze(ctx, cells[i][j])
		if err := ctx.Err(); err != nil {
			return err
		}
		series[i].Points[j].RiskOrdinal = summary.BurnoutRiskLevel.Ordinal()
		return nil
	})
	if err != nil {
		return models.BurnoutSeries{}, err
	}

	return models.BurnoutSeries{Label: burnoutSeriesLabel, Group: group, Series: series}, nil
}

func latest(messages []models.Message) time.Time {
	var t time.Time
	for _, m := range messages {
		if m.Timestamp.After(t) {
			t = m.Timestamp.Time
		}
	}
	return t.UTC()
}
