package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/employeepulse/pkg/models"
)

// Draft is an insight as the model returns it. Every field is optional and
// untrusted until normalized.
type Draft struct {
	ID             string   `json:"id,omitempty" schema:"nullable"`
	Scope          string   `json:"scope,omitempty" schema:"nullable"`
	Team           string   `json:"team,omitempty" schema:"nullable"`
	ChannelID      string   `json:"channelId,omitempty" schema:"nullable"`
	Title          string   `json:"title,omitempty" schema:"nullable"`
	Summary        string   `json:"summary,omitempty" schema:"nullable"`
	Recommendation string   `json:"recommendation,omitempty" schema:"nullable"`
	Severity       string   `json:"severity,omitempty" schema:"nullable"`
	Category       string   `json:"category,omitempty" schema:"nullable"`
	Confidence     *float64 `json:"confidence,omitempty" schema:"nullable"`
	Tags           []string `json:"tags,omitempty" schema:"nullable"`
	CreatedAt      string   `json:"createdAt,omitempty" schema:"nullable"`
}

// DraftSet is the structured output requested from the model.
type DraftSet struct {
	Insights []Draft `json:"insights" schema:"required"`
}

// draftDefaults fills whatever the model left out or got wrong.
var draftDefaults = struct {
	Severity   models.RiskLevel
	Category   models.InsightCategory
	Confidence float64
	Team       string
}{
	Severity:   models.RiskMedium,
	Category:   models.CategorySentiment,
	Confidence: 0.7,
	Team:       "team",
}

var createdAtLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"}

// Normalize turns draft idx into a complete team insight. channelNames maps
// resolved channel ids to names and backs up a missing team.
func Normalize(d Draft, idx int, r models.TimeRange, channelNames map[string]string, now time.Time) models.Insight {
	channelID := strings.TrimSpace(d.ChannelID)
	team := strings.TrimSpace(d.Team)
	if team == "" {
		team = channelNames[channelID]
	}
	if team == "" {
		team = channelID
	}
	if team == "" {
		team = draftDefaults.Team
	}

	category := models.InsightCategory(strings.ToLower(strings.TrimSpace(d.Category)))
	if !category.Valid() {
		category = draftDefaults.Category
	}

	in := models.Insight{
		ID:             strings.TrimSpace(d.ID),
		Scope:          models.ScopeTeam,
		Team:           team,
		ChannelID:      channelID,
		Title:          strings.TrimSpace(d.Title),
		Summary:        strings.TrimSpace(d.Summary),
		Recommendation: strings.TrimSpace(d.Recommendation),
		Severity:       normalizeSeverity(d.Severity),
		Category:       category,
		Confidence:     draftDefaults.Confidence,
		Tags:           d.Tags,
		CreatedAt:      parseCreatedAt(d.CreatedAt, now),
		Range:          r,
	}
	if d.Confidence != nil {
		in.Confidence = min(max(*d.Confidence, 0), 1)
	}
	if in.ID == "" {
		key := channelID
		if key == "" {
			key = team
		}
		in.ID = fmt.Sprintf("insight-%s-%s-%d", key, r, idx)
	}
	if in.Title == "" {
		in.Title = titleFor(team, category)
	}
	if in.Summary == "" {
		in.Summary = summaryFor(team, category, r)
	}
	if in.Recommendation == "" {
		in.Recommendation = recommendations[category]
	}
	if len(in.Tags) == 0 {
		in.Tags = []string{team, string(category), string(r)}
	}
	return in
}

func normalizeSeverity(s string) models.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return models.RiskLow
	case "medium":
		return models.RiskMedium
	case "high":
		return models.RiskHigh
	}
	return draftDefaults.Severity
}

func parseCreatedAt(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}
