// Package heuristic is the deterministic, offline sentiment and burnout scorer
// used whenever the language model is unavailable.
package heuristic

import (
	"strings"

	"github.com/employeepulse/pkg/models"
)

// MaxMessages bounds how many of the most recent messages a summary covers.
const MaxMessages = 100

var (
	positiveMarkers = []string{
		"great", "good", "excellent", "awesome", "thanks", "thank you", "love",
		"nice", "well done", "amazing", "happy", "win", "ship",
	}
	negativeMarkers = []string{
		"bad", "terrible", "awful", "hate", "stuck", "blocked", "broken", "late",
		"fail", "risky", "stress", "stressful", "overworked", "burnout",
		"exhausted", "tired", "anxious", "deadline",
	}

	highRiskMarkers   = []string{"burnout", "overworked", "exhausted"}
	mediumRiskMarkers = []string{"stress", "deadline", "late", "tired", "anxious"}
)

// Score maps text to a sentiment in [-1, 1]. Each marker phrase counts at most
// once, matched case-insensitively as a substring.
func Score(text string) float64 {
	t := strings.ToLower(text)
	raw := countPresent(t, positiveMarkers) - countPresent(t, negativeMarkers)
	if raw == 0 {
		return 0
	}
	return clamp(float64(raw)/5, -1, 1)
}

// Risk classifies a single message. High markers win over medium markers.
func Risk(text string) models.RiskLevel {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, highRiskMarkers):
		return models.RiskHigh
	case containsAny(t, mediumRiskMarkers):
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// OverallRisk derives the set-level risk from a mean sentiment. It is
// independent of the per-message markers.
func OverallRisk(mean float64) models.RiskLevel {
	switch {
	case mean <= -0.4:
		return models.RiskHigh
	case mean <= -0.1:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Summarize scores the most recent MaxMessages messages. Input is expected in
// chronological order. An empty input yields a neutral Low summary.
func Summarize(messages []models.Message) models.AnalysisSummary {
	recent := Recent(messages, MaxMessages)

	items := make([]models.MessageAnalysisItem, 0, len(recent))
	total := 0.0
	for _, m := range recent {
		s := Score(m.Text)
		risk := Risk(m.Text)
		total += s
		items = append(items, models.MessageAnalysisItem{
			MessageID:   m.ID,
			Sentiment:   s,
			BurnoutRisk: &risk,
		})
	}

	overall := 0.0
	if len(recent) > 0 {
		overall = total / float64(len(recent))
	}
	return models.AnalysisSummary{
		OverallSentiment: overall,
		BurnoutRiskLevel: OverallRisk(overall),
		Items:            items,
	}
}

// Recent returns the last n messages of a chronological slice.
func Recent(messages []models.Message, n int) []models.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

func countPresent(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(text, m) {
			n++
		}
	}
	return n
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
