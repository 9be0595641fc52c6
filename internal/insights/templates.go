package insights

import (
	"fmt"
	"strings"

	"github.com/employeepulse/pkg/models"
)

// heuristicCategories is the rotation order for heuristic insights.
var heuristicCategories = []models.InsightCategory{
	models.CategoryEngagement,
	models.CategoryBurnout,
	models.CategoryCommunication,
	models.CategoryWorkload,
	models.CategorySentiment,
	models.CategoryRecognition,
}

var (
	heuristicSeverities  = []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh}
	heuristicConfidences = []float64{0.62, 0.73, 0.81, 0.9}
)

// summaryTemplates take the team name and the range.
var summaryTemplates = map[models.InsightCategory]string{
	models.CategoryEngagement:    "%[1]s shows a dip in participation during standups and fewer emoji reactions, suggesting lower day-to-day engagement.",
	models.CategoryBurnout:       "%[1]s exhibits more after-hours messages and sharper tone, correlated with sprint crunch, indicating potential burnout risk.",
	models.CategoryCommunication: "%[1]s has longer unresolved threads and increased back-and-forth in specs, pointing to misalignment in requirements.",
	models.CategoryWorkload:      "%[1]s has rising message volume but declining unique senders, hinting at workload concentration among a few contributors.",
	models.CategorySentiment:     "%[1]s's average sentiment trended downward compared to the previous %[2]s, especially around incident-related threads.",
	models.CategoryRecognition:   "%[1]s has fewer shout-outs and kudos than typical this %[2]s, which can correlate with lower engagement over time.",
}

var recommendations = map[models.InsightCategory]string{
	models.CategoryEngagement:    "Rotate facilitation duties and try a quick win demo Friday. Ask each member to share a small win. Revisit meeting formats to shorten and add interaction.",
	models.CategoryBurnout:       "Plan a lighter sprint next cycle, stagger on-call, and schedule 1:1s to check capacity. Encourage 'office hours' posts to deflect after-hours DMs.",
	models.CategoryCommunication: "Adopt a spec template with clear 'decision owner' and 'open questions'. Timebox async debates and move to a 15-min sync when threads exceed 20 replies.",
	models.CategoryWorkload:      "Rebalance tasks by pairing senior contributors with juniors on high-load areas. Add a clear handoff checklist for PR reviewers to spread load.",
	models.CategorySentiment:     "Acknowledge incident fatigue, recap what changed, and share next steps. Invite anonymous feedback in the retro to capture concerns.",
	models.CategoryRecognition:   "Add a weekly kudos thread and call out specific behaviors tied to values. Encourage peers to nominate teammates for recognition.",
}

const (
	companySummary        = "Sentiment swings are higher than typical across multiple teams during release periods. Consider a shared launch checklist to reduce last-mile friction."
	companyRecommendation = "Introduce a cross-team launch owner, publish a shared cutover plan, and schedule a 30-min post-launch sync to capture lessons learned."
	companyConfidence     = 0.78
)

func titleFor(team string, category models.InsightCategory) string {
	c := string(category)
	if c != "" {
		c = strings.ToUpper(c[:1]) + c[1:]
	}
	return fmt.Sprintf("%s: %s insight", team, c)
}

func summaryFor(team string, category models.InsightCategory, r models.TimeRange) string {
	if tmpl, ok := summaryTemplates[category]; ok {
		return fmt.Sprintf(tmpl, team, r)
	}
	return fmt.Sprintf("%s shows notable patterns in %s this %s.", team, category, r)
}
