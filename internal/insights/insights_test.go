package insights

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employeepulse/internal/collector"
	"github.com/employeepulse/internal/llm"
	"github.com/employeepulse/internal/slack"
	"github.com/employeepulse/pkg/models"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type stubProvider struct {
	channels []models.Channel
	messages map[string][]models.Message
}

func (p *stubProvider) Connection(ctx context.Context) models.Connection { return models.Connection{} }
func (p *stubProvider) ListChannels(ctx context.Context) ([]models.Channel, error) {
	return p.channels, nil
}
func (p *stubProvider) ListUsers(ctx context.Context) ([]models.User, error) { return nil, nil }
func (p *stubProvider) SelectedChannels(ctx context.Context) ([]models.Channel, error) {
	return nil, nil
}
func (p *stubProvider) SelectChannels(ctx context.Context, ids []string) error { return nil }
func (p *stubProvider) IsConnected(ctx context.Context) bool                 { return false }
func (p *stubProvider) ChannelMessages(ctx context.Context, id string, q slack.HistoryQuery) ([]models.Message, error) {
	return p.messages[id], nil
}

// fakeGenerator returns a canned payload or error and records the request.
type fakeGenerator struct {
	payload string
	err     error
	req     llm.StructuredRequest
}

func (g *fakeGenerator) GenerateStructured(ctx context.Context, req llm.StructuredRequest, target any) error {
	g.req = req
	if g.err != nil {
		return g.err
	}
	return json.Unmarshal([]byte(g.payload), target)
}

func twoChannels() *stubProvider {
	var many []models.Message
	for i := 0; i < 120; i++ {
		many = append(many, models.Message{
			ID:        "m" + string(rune('A'+i%26)),
			AuthorID:  "U1",
			Text:      "hello",
			Timestamp: models.NewEpochTime(fixedNow.Add(-time.Duration(120-i) * time.Minute)),
		})
	}
	return &stubProvider{
		channels: []models.Channel{{ID: "C1", Name: "general"}, {ID: "C2", Name: "eng"}},
		messages: map[string][]models.Message{"C1": many},
	}
}

func newSynth(p slack.Provider, gen Generator) *Synthesizer {
	return NewSynthesizer(collector.New(p, 2), gen, func() time.Time { return fixedNow })
}

func ids(in []models.Insight) []string {
	out := make([]string, len(in))
	for i, x := range in {
		out[i] = x.ID
	}
	return out
}

func TestTeamInsightsFailingModel(t *testing.T) {
	gen := &fakeGenerator{err: llm.ErrRequestFailed}
	got, err := newSynth(twoChannels(), gen).TeamInsights(context.Background(), models.RangeWeek, 5, nil)
	require.NoError(t, err)
	require.Len(t, got, 5)

	unique := make(map[string]bool)
	for _, in := range got {
		unique[in.ID] = true
	}
	assert.Len(t, unique, 5)
	assert.Equal(t, models.ScopeCompany, got[4].Scope)
	assert.Equal(t, "insight-company-week", got[4].ID)
	assert.Equal(t, "general", got[0].Team)
	assert.Equal(t, "C1", got[0].ChannelID)
	assert.Equal(t, "Eng", got[2].Team)
	assert.Empty(t, got[2].ChannelID)
}

func TestTeamInsightsPromptBudget(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	_, err := newSynth(twoChannels(), gen).TeamInsights(context.Background(), models.RangeMonth, 3, nil)
	require.NoError(t, err)

	require.NotNil(t, gen.req.Temperature)
	assert.Equal(t, 0.2, *gen.req.Temperature)
	assert.Contains(t, gen.req.Prompt, "at most 3")
	assert.Contains(t, gen.req.Prompt, "set range to 'month'")

	raw := strings.TrimPrefix(gen.req.Prompt, "Context messages by channel: ")
	raw = raw[:strings.Index(raw, "\n\nTask: ")]
	var compact []promptChannel
	require.NoError(t, json.Unmarshal([]byte(raw), &compact))
	require.Len(t, compact, 2)
	assert.Len(t, compact[0].Messages, MaxPromptMessages)
	assert.Empty(t, compact[1].Messages)
}

func TestTeamInsightsNormalizesAndSupplements(t *testing.T) {
	gen := &fakeGenerator{payload: `{"insights": [
		{"channelId": "C2", "severity": "high", "category": "Workload", "confidence": 1.7},
		{"id": "dup", "team": "general", "category": "nonsense"},
		{"id": "dup", "team": "general"}
	]}`}
	got, err := newSynth(twoChannels(), gen).TeamInsights(context.Background(), models.RangeQuarter, 4, nil)
	require.NoError(t, err)
	require.Len(t, got, 4)

	first := got[0]
	assert.Equal(t, "insight-C2-quarter-0", first.ID)
	assert.Equal(t, "eng", first.Team)
	assert.Equal(t, models.RiskHigh, first.Severity)
	assert.Equal(t, models.CategoryWorkload, first.Category)
	assert.Equal(t, 1.0, first.Confidence)
	assert.Equal(t, []string{"eng", "workload", "quarter"}, first.Tags)
	assert.Equal(t, fixedNow, first.CreatedAt)

	second := got[1]
	assert.Equal(t, "dup", second.ID)
	assert.Equal(t, models.CategorySentiment, second.Category)
	assert.Equal(t, models.RiskMedium, second.Severity)
	assert.Equal(t, 0.7, second.Confidence)

	assert.Equal(t, []string{"insight-C2-quarter-0", "dup", "insight-general-quarter-0", "insight-eng-quarter-1"}, ids(got))
}

func TestTeamInsightsNoChannels(t *testing.T) {
	got, err := newSynth(&stubProvider{}, &fakeGenerator{}).TeamInsights(context.Background(), models.RangeWeek, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestNormalizeDefaults(t *testing.T) {
	got := Normalize(Draft{CreatedAt: "2024-03-01T09:30:00"}, 2, models.RangeYear, nil, fixedNow)
	want := models.Insight{
		ID:             "insight-team-year-2",
		Scope:          models.ScopeTeam,
		Team:           "team",
		Title:          "team: Sentiment insight",
		Summary:        "team's average sentiment trended downward compared to the previous year, especially around incident-related threads.",
		Recommendation: recommendations[models.CategorySentiment],
		Severity:       models.RiskMedium,
		Category:       models.CategorySentiment,
		Confidence:     0.7,
		Tags:           []string{"team", "sentiment", "year"},
		CreatedAt:      time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Range:          models.RangeYear,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestHeuristicRotation(t *testing.T) {
	channels := []models.Channel{{ID: "C1", Name: "general"}}

	week := Heuristic(models.RangeWeek, channels, 5, fixedNow)
	require.Len(t, week, 5)
	// Seed (idx+1)*1: categories rotate from burnout onwards.
	assert.Equal(t, models.CategoryBurnout, week[0].Category)
	assert.Equal(t, models.RiskMedium, week[0].Severity)
	assert.Equal(t, 0.73, week[0].Confidence)
	assert.Equal(t, models.CategoryCommunication, week[1].Category)

	year := Heuristic(models.RangeYear, channels, 5, fixedNow)
	// Seed 4: sentiment, Medium, 0.62.
	assert.Equal(t, models.CategorySentiment, year[0].Category)
	assert.Equal(t, models.RiskMedium, year[0].Severity)
	assert.Equal(t, 0.62, year[0].Confidence)

	small := Heuristic(models.RangeWeek, channels, 2, fixedNow)
	assert.Equal(t, []string{"insight-general-week-0", "insight-Eng-week-1"}, ids(small))

	many := make([]models.Channel, 10)
	for i := range many {
		many[i] = models.Channel{ID: string(rune('a' + i)), Name: string(rune('a' + i))}
	}
	big := Heuristic(models.RangeMonth, many, 8, fixedNow)
	require.Len(t, big, 8)
	assert.Equal(t, models.ScopeCompany, big[7].Scope)

	assert.Empty(t, Heuristic(models.RangeWeek, channels, 0, fixedNow))
	if diff := cmp.Diff(week, Heuristic(models.RangeWeek, channels, 5, fixedNow)); diff != "" {
		t.Errorf("heuristic insights not deterministic:\n%s", diff)
	}
}
