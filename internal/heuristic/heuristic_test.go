package heuristic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employeepulse/pkg/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "", 0},
		{"neutral", "the meeting moved to 3pm", 0},
		{"one positive", "Nice work", 0.2},
		{"three positives", "Great job, thanks, awesome", 0.6},
		{"one negative", "I am stuck", -0.2},
		{"cancels out", "good but blocked", 0},
		{"case insensitive", "AMAZING", 0.2},
		{"clamped", "burnout exhausted overworked stressful tired anxious deadline late", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.text), 1e-9)
		})
	}
}

func TestScoreBounded(t *testing.T) {
	words := append(append([]string{}, positiveMarkers...), negativeMarkers...)
	for i := range words {
		text := strings.Join(words[:i+1], " ")
		s := Score(text)
		assert.GreaterOrEqual(t, s, -1.0, text)
		assert.LessOrEqual(t, s, 1.0, text)
	}
}

func TestRisk(t *testing.T) {
	assert.Equal(t, models.RiskHigh, Risk("Feeling burnout and stress"))
	assert.Equal(t, models.RiskMedium, Risk("deadline is tomorrow"))
	assert.Equal(t, models.RiskLow, Risk("shipping today"))
	assert.Equal(t, models.RiskLow, Risk(""))
}

func TestOverallRisk(t *testing.T) {
	assert.Equal(t, models.RiskHigh, OverallRisk(-0.4))
	assert.Equal(t, models.RiskMedium, OverallRisk(-0.1))
	assert.Equal(t, models.RiskMedium, OverallRisk(-0.39))
	assert.Equal(t, models.RiskLow, OverallRisk(-0.09))
	assert.Equal(t, models.RiskLow, OverallRisk(0.5))
}

func TestSummarizeMean(t *testing.T) {
	msgs := []models.Message{
		{ID: "1", Text: "Great job, thanks, awesome"},
		{ID: "2", Text: "I am stuck"},
	}

	got := Summarize(msgs)
	assert.InDelta(t, 0.2, got.OverallSentiment, 1e-9)
	assert.Equal(t, models.RiskLow, got.BurnoutRiskLevel)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "1", got.Items[0].MessageID)
	require.NotNil(t, got.Items[1].BurnoutRisk)
	assert.Equal(t, models.RiskLow, *got.Items[1].BurnoutRisk)
}

func TestSummarizeOnlyRecentMessages(t *testing.T) {
	msgs := make([]models.Message, 0, 150)
	for i := 0; i < 50; i++ {
		msgs = append(msgs, models.Message{ID: fmt.Sprintf("old-%d", i), Text: "terrible"})
	}
	for i := 0; i < 100; i++ {
		msgs = append(msgs, models.Message{ID: fmt.Sprintf("new-%d", i), Text: "good"})
	}

	got := Summarize(msgs)
	require.Len(t, got.Items, 100)
	assert.Equal(t, "new-0", got.Items[0].MessageID)
	assert.InDelta(t, 0.2, got.OverallSentiment, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	assert.Equal(t, 0.0, got.OverallSentiment)
	assert.Equal(t, models.RiskLow, got.BurnoutRiskLevel)
	assert.Empty(t, got.Items)
}
