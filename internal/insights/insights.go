// Package insights turns recent channel activity into team-level insights,
// asking the language model first and filling gaps with deterministic ones.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/employeepulse/internal/collector"
	"github.com/employeepulse/internal/heuristic"
	"github.com/employeepulse/internal/llm"
	"github.com/employeepulse/internal/slack"
	"github.com/employeepulse/internal/timebucket"
	"github.com/employeepulse/pkg/models"
)

// MaxPromptMessages is the per-channel message budget sent to the model.
const MaxPromptMessages = 80

const (
	synthesisTemperature = 0.2

	systemPrompt = "You are an organizational coach creating concise, actionable insights for team managers. " +
		"Focus on communication patterns, engagement, workload, recognition, sentiment, and burnout risk. " +
		"Prefer specific, constructive recommendations that can be acted on within 1-2 weeks."
)

// Generator is the structured-output half of the LLM client.
type Generator interface {
	GenerateStructured(ctx context.Context, req llm.StructuredRequest, target any) error
}

type Synthesizer struct {
	collector *collector.Collector
	llm       Generator
	now       func() time.Time
}

func NewSynthesizer(c *collector.Collector, gen Generator, now func() time.Time) *Synthesizer {
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{collector: c, llm: gen, now: now}
}

type promptMessage struct {
	ID     string           `json:"id"`
	UserID string           `json:"userId"`
	Text   string           `json:"text"`
	TS     models.EpochTime `json:"ts"`
}

type promptChannel struct {
	ChannelID   string          `json:"channelId"`
	ChannelName string          `json:"channelName"`
	Messages    []promptMessage `json:"messages"`
}

// TeamInsights returns at most limit insights for the resolved channels,
// treating each channel as a team. Ids are unique within the result.
func (s *Synthesizer) TeamInsights(ctx context.Context, r models.TimeRange, limit int, override []string) ([]models.Insight, error) {
	if limit <= 0 {
		return []models.Insight{}, nil
	}
	channels, err := s.collector.ResolveChannels(ctx, override)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return []models.Insight{}, nil
	}

	now := s.now()
	w := timebucket.Window(r, now)
	lists, err := s.collector.Fetch(ctx, channels, slack.HistoryQuery{Oldest: w.Start, Latest: w.End})
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(channels))
	for _, ch := range channels {
		names[ch.ID] = channelName(ch)
	}

	drafts, err := s.requestDrafts(ctx, r, limit, channels, lists)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn().
			Err(err).
			Str("error_kind", llm.ErrorKind(err)).
			Str("range", string(r)).
			Msg("Insight synthesis unavailable, using heuristic insights")
		return Heuristic(r, channels, limit, now), nil
	}

	if len(drafts) > limit {
		drafts = drafts[:limit]
	}
	out := make([]models.Insight, 0, limit)
	seen := make(map[string]bool, limit)
	for i, d := range drafts {
		in := Normalize(d, i, r, names, now)
		if seen[in.ID] {
			log.Debug().Str("id", in.ID).Msg("Dropping insight draft with duplicate id")
			continue
		}
		seen[in.ID] = true
		out = append(out, in)
	}

	if len(out) < limit {
		for _, in := range Heuristic(r, channels, limit, now) {
			if seen[in.ID] {
				continue
			}
			seen[in.ID] = true
			out = append(out, in)
			if len(out) >= limit {
				break
			}
		}
	}

	log.Info().
		Str("range", string(r)).
		Int("drafts", len(drafts)).
		Int("insights", len(out)).
		Msg("Synthesized team insights")
	return out, nil
}

func (s *Synthesizer) requestDrafts(ctx context.Context, r models.TimeRange, limit int, channels []models.Channel, lists [][]models.Message) ([]Draft, error) {
	if s.llm == nil {
		return nil, llm.ErrNotConfigured
	}

	compact := make([]promptChannel, len(channels))
	for i, ch := range channels {
		recent := heuristic.Recent(lists[i], MaxPromptMessages)
		pc := promptChannel{ChannelID: ch.ID, ChannelName: channelName(ch), Messages: make([]promptMessage, len(recent))}
		for j, m := range recent {
			pc.Messages[j] = promptMessage{ID: m.ID, UserID: m.AuthorID, Text: m.Text, TS: m.Timestamp}
		}
		compact[i] = pc
	}
	encoded, err := json.Marshal(compact)
	if err != nil {
		return nil, fmt.Errorf("encode insight context: %w", err)
	}

	temperature := synthesisTemperature
	var set DraftSet
	err = s.llm.GenerateStructured(ctx, llm.StructuredRequest{
		System:      systemPrompt,
		Prompt:      "Context messages by channel: " + string(encoded) + "\n\nTask: " + taskPrompt(r, limit),
		Temperature: &temperature,
	}, &set)
	if err != nil {
		return nil, err
	}
	return set.Insights, nil
}

func taskPrompt(r models.TimeRange, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Given Slack messages grouped by channel (treat each channel as a team), "+
		"produce at most %d of the most important team-level insights covering different channels where possible. "+
		"Consider the time range: %s. Each insight must:\n", limit, r)
	b.WriteString("- set scope to 'team'\n")
	b.WriteString("- set team to the channel's human-readable name\n")
	b.WriteString("- include channelId\n")
	b.WriteString("- write a short title and summary\n")
	b.WriteString("- provide one actionable recommendation\n")
	b.WriteString("- set severity to Low, Medium, or High (reflecting risk/urgency)\n")
	b.WriteString("- set category to one of: burnout, engagement, communication, recognition, workload, sentiment\n")
	b.WriteString("- set confidence in [0,1] based on strength/volume of evidence\n")
	b.WriteString("- include createdAt as an ISO timestamp\n")
	fmt.Fprintf(&b, "- set range to '%s'\n", r)
	b.WriteString("Keep writing crisp and non-repetitive across insights.")
	return b.String()
}

func channelName(ch models.Channel) string {
	if ch.Name != "" {
		return ch.Name
	}
	return ch.ID
}
