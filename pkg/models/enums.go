package models

import (
	"fmt"
)

// TimeRange is the closed set of dashboard ranges.
type TimeRange string

const (
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
	RangeYear    TimeRange = "year"
)

// ParseTimeRange validates a range parameter. Empty input defaults to week.
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case "":
		return RangeWeek, nil
	case RangeWeek, RangeMonth, RangeQuarter, RangeYear:
		return TimeRange(s), nil
	}
	return "", fmt.Errorf("invalid range %q: must be one of week, month, quarter, year", s)
}

// SeedFactor is the per-range multiplier used by the heuristic insight rotation.
func (r TimeRange) SeedFactor() int {
	switch r {
	case RangeMonth:
		return 2
	case RangeQuarter:
		return 3
	case RangeYear:
		return 4
	default:
		return 1
	}
}

// RiskLevel is the ordinal burnout classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Ordinal maps Low/Medium/High to 0/1/2. Unknown values map to 0.
func (r RiskLevel) Ordinal() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 0
	}
}

// Valid reports whether r is one of the three known levels.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Perspective selects the entity kind for entity totals.
type Perspective string

const (
	PerspectiveChannel  Perspective = "channel"
	PerspectiveTeam     Perspective = "team"
	PerspectiveEmployee Perspective = "employee"
)

// ParsePerspective validates a perspective parameter. Empty input defaults to channel.
func ParsePerspective(s string) (Perspective, error) {
	switch Perspective(s) {
	case "":
		return PerspectiveChannel, nil
	case PerspectiveChannel, PerspectiveTeam, PerspectiveEmployee:
		return Perspective(s), nil
	}
	return "", fmt.Errorf("invalid perspective %q: must be one of channel, team, employee", s)
}

// Grouping selects heatmap rows.
type Grouping string

const (
	GroupChannels Grouping = "channels"
	GroupTeams    Grouping = "teams"
	GroupPeople   Grouping = "people"
)

// ParseGrouping validates a heatmap grouping. Empty input defaults to channels.
func ParseGrouping(s string) (Grouping, error) {
	switch Grouping(s) {
	case "":
		return GroupChannels, nil
	case GroupChannels, GroupTeams, GroupPeople:
		return Grouping(s), nil
	}
	return "", fmt.Errorf("invalid grouping %q: must be one of channels, teams, people", s)
}

// HeatmapMetric selects the heatmap cell aggregate.
type HeatmapMetric string

const (
	MetricSentiment HeatmapMetric = "sentiment"
	MetricMessages  HeatmapMetric = "messages"
	MetricThreads   HeatmapMetric = "threads"
)

// ParseHeatmapMetric validates a heatmap metric. Empty input defaults to sentiment.
func ParseHeatmapMetric(s string) (HeatmapMetric, error) {
	switch HeatmapMetric(s) {
	case "":
		return MetricSentiment, nil
	case MetricSentiment, MetricMessages, MetricThreads:
		return HeatmapMetric(s), nil
	}
	return "", fmt.Errorf("invalid metric %q: must be one of sentiment, messages, threads", s)
}

// InsightScope is the audience of an insight.
type InsightScope string

const (
	ScopeTeam    InsightScope = "team"
	ScopeChannel InsightScope = "channel"
	ScopeCompany InsightScope = "company"
)

// InsightCategory classifies an insight.
type InsightCategory string

const (
	CategoryBurnout       InsightCategory = "burnout"
	CategoryEngagement    InsightCategory = "engagement"
	CategoryCommunication InsightCategory = "communication"
	CategoryRecognition   InsightCategory = "recognition"
	CategoryWorkload      InsightCategory = "workload"
	CategorySentiment     InsightCategory = "sentiment"
)

// Valid reports whether c is a known category.
func (c InsightCategory) Valid() bool {
	switch c {
	case CategoryBurnout, CategoryEngagement, CategoryCommunication,
		CategoryRecognition, CategoryWorkload, CategorySentiment:
		return true
	}
	return false
}
