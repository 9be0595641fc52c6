package models

import (
	"time"
)

// Chat platform entities

// Reaction is an emoji reaction on a message. Its weight is the number of users who reacted.
type Reaction struct {
	Name       string   `json:"name"`
	UserIDs    []string `json:"userIds"`
	EmojiGlyph string   `json:"emoji,omitempty"`
}

// Count returns the contribution of the reaction to emoji totals.
func (r Reaction) Count() int {
	return len(r.UserIDs)
}

// Message is a single channel message.
type Message struct {
	ID        string     `json:"id"`
	AuthorID  string     `json:"userId"`
	Text      string     `json:"text"`
	Timestamp EpochTime  `json:"ts"`
	Reactions []Reaction `json:"reactions,omitempty"`
	Sentiment *float64   `json:"sentiment,omitempty"`

	// Thread metadata, present only when the upstream platform reports it.
	ThreadTS   string `json:"threadTs,omitempty"`
	ReplyCount int    `json:"replyCount,omitempty"`
}

// ReactionCount sums reaction weights on the message.
func (m Message) ReactionCount() int {
	total := 0
	for _, r := range m.Reactions {
		total += r.Count()
	}
	return total
}

// Thread groups a root message and its replies. Messages[0] is the root.
type Thread struct {
	ID                    string    `json:"id"`
	RootMessageID         string    `json:"rootMessageId"`
	Messages              []Message `json:"messages"`
	LastActivityTimestamp EpochTime `json:"lastActivityTs"`
}

// Channel is a chat channel. Threads is optional and may be nil.
type Channel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	IsPrivate     bool     `json:"isPrivate,omitempty"`
	MemberUserIDs []string `json:"memberUserIds,omitempty"`
	Threads       []Thread `json:"threads,omitempty"`
}

// User is a workspace member.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	IsBot       bool   `json:"isBot,omitempty"`
}

// Label returns the best human-readable name for the user.
func (u User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}

// Connection describes the chat platform workspace the backend talks to.
type Connection struct {
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
	IsConnected bool   `json:"isConnected"`
}

// Aggregation entities

// TimeBucket is the half-open interval [Start, End).
type TimeBucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the bucket.
func (b TimeBucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// EntityTotal aggregates activity for one channel, team or employee.
type EntityTotal struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MessageCount  int    `json:"messages"`
	ThreadCount   int    `json:"threads"`
	ResponseCount int    `json:"responses"`
	EmojiCount    int    `json:"emojis"`
}

// EmojiStat is one row of the top-emoji ranking.
type EmojiStat struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// SentimentPoint is one bucket of the sentiment trend.
type SentimentPoint struct {
	Date         string  `json:"date"`
	Label        string  `json:"label"`
	AvgSentiment float64 `json:"avgSentiment"`
	MessageCount int     `json:"messageCount"`
}

// ChannelMetric is one row of the dashboard channel table.
type ChannelMetric struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AvgSentiment float64   `json:"avgSentiment"`
	Messages     int       `json:"messages"`
	Threads      int       `json:"threads"`
	LastActivity time.Time `json:"lastActivity"`
	Risk         RiskLevel `json:"risk"`
}

// KPI is the dashboard headline rollup.
type KPI struct {
	AvgSentiment      float64 `json:"avgSentiment"`
	BurnoutRiskCount  int     `json:"burnoutRiskCount"`
	MonitoredChannels int     `json:"monitoredChannels"`
}

// BurnoutPoint is a risk ordinal for one bucket.
type BurnoutPoint struct {
	Label       string `json:"label"`
	RiskOrdinal int    `json:"value"`
}

// EntityBurnoutSeries is the burnout series for one entity.
type EntityBurnoutSeries struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Points []BurnoutPoint `json:"points"`
}

// BurnoutSeries is the response of the burnout series operation.
type BurnoutSeries struct {
	Label  string                `json:"label"`
	Group  string                `json:"group"`
	Series []EntityBurnoutSeries `json:"series"`
}

// HeatmapMatrix is rectangular: len(Values) == len(Rows) and every row has len(Cols) cells.
type HeatmapMatrix struct {
	Rows   []string    `json:"rows"`
	Cols   []string    `json:"cols"`
	Values [][]float64 `json:"values"`
}

// LLM analysis entities

// MessageAnalysisItem is the per-message part of an AnalysisSummary.
type MessageAnalysisItem struct {
	MessageID   string     `json:"messageId" schema:"required"`
	Sentiment   float64    `json:"sentiment" schema:"required,min=-1,max=1"`
	BurnoutRisk *RiskLevel `json:"burnoutRisk,omitempty" schema:"nullable,enum=Low|Medium|High"`
	Categories  []string   `json:"categories,omitempty" schema:"nullable"`
	Summary     *string    `json:"summary,omitempty" schema:"nullable"`
}

// AnalysisSummary is the result of analysing a message set.
type AnalysisSummary struct {
	OverallSentiment float64               `json:"overallSentiment" schema:"required,min=-1,max=1"`
	BurnoutRiskLevel RiskLevel             `json:"burnoutRiskLevel" schema:"required,enum=Low|Medium|High"`
	Items            []MessageAnalysisItem `json:"items" schema:"required"`
}

// Insights

// InsightMetricContext carries optional metric deltas backing an insight.
type InsightMetricContext struct {
	AvgSentimentDelta  *float64 `json:"avgSentimentDelta,omitempty"`
	MessageVolumeDelta *float64 `json:"messageVolumeDelta,omitempty"`
}

// Insight is a fully populated, validated insight.
type Insight struct {
	ID             string                `json:"id"`
	Scope          InsightScope          `json:"scope"`
	Team           string                `json:"team,omitempty"`
	ChannelID      string                `json:"channelId,omitempty"`
	Title          string                `json:"title"`
	Summary        string                `json:"summary"`
	Recommendation string                `json:"recommendation"`
	Severity       RiskLevel             `json:"severity"`
	Category       InsightCategory       `json:"category"`
	Confidence     float64               `json:"confidence"`
	Tags           []string              `json:"tags"`
	CreatedAt      time.Time             `json:"createdAt"`
	MetricContext  *InsightMetricContext `json:"metricContext,omitempty"`
	Range          TimeRange             `json:"range"`
}
