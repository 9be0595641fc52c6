package insights

import (
	"fmt"
	"time"

	"github.com/employeepulse/internal/metrics"
	"github.com/employeepulse/pkg/models"
)

// minTeamInsights is how many team insights the heuristic aims for, padding
// with the seed teams when there are fewer channels.
const minTeamInsights = 4

type heuristicTeam struct {
	name      string
	channelID string
}

// Heuristic builds deterministic insights for the channels: a rotation over
// the category templates keyed by (index+1) times the range seed factor,
// followed by one company insight when the limit leaves room for it.
func Heuristic(r models.TimeRange, channels []models.Channel, limit int, now time.Time) []models.Insight {
	if limit <= 0 {
		return []models.Insight{}
	}

	var teams []heuristicTeam
	seen := make(map[string]bool)
	for _, ch := range channels {
		name := channelName(ch)
		if seen[name] {
			continue
		}
		seen[name] = true
		teams = append(teams, heuristicTeam{name: name, channelID: ch.ID})
	}
	for _, seed := range metrics.SeedTeams {
		if len(teams) >= minTeamInsights {
			break
		}
		if !seen[seed] {
			seen[seed] = true
			teams = append(teams, heuristicTeam{name: seed})
		}
	}

	count := min(limit, len(teams))
	if limit > minTeamInsights {
		// Keep one slot for the company insight.
		count = min(limit-1, len(teams))
	}

	created := now.UTC()
	out := make([]models.Insight, 0, limit)
	for idx, team := range teams[:count] {
		s := (idx + 1) * r.SeedFactor()
		category := heuristicCategories[s%len(heuristicCategories)]
		out = append(out, models.Insight{
			ID:             fmt.Sprintf("insight-%s-%s-%d", team.name, r, idx),
			Scope:          models.ScopeTeam,
			Team:           team.name,
			ChannelID:      team.channelID,
			Title:          titleFor(team.name, category),
			Summary:        summaryFor(team.name, category, r),
			Recommendation: recommendations[category],
			Severity:       heuristicSeverities[s%len(heuristicSeverities)],
			Category:       category,
			Confidence:     heuristicConfidences[s%len(heuristicConfidences)],
			Tags:           []string{team.name, string(category), string(r)},
			CreatedAt:      created,
			Range:          r,
		})
	}

	if len(out) < limit {
		out = append(out, models.Insight{
			ID:             fmt.Sprintf("insight-company-%s", r),
			Scope:          models.ScopeCompany,
			Title:          fmt.Sprintf("Org-wide sentiment variability in the last %s", r),
			Summary:        companySummary,
			Recommendation: companyRecommendation,
			Severity:       models.RiskMedium,
			Category:       models.CategorySentiment,
			Confidence:     companyConfidence,
			Tags:           []string{"org", "launch", string(r)},
			CreatedAt:      created,
			Range:          r,
		})
	}
	return out
}
