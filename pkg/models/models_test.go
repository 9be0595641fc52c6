package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochTimeJSON(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","userId":"U1","text":"hi","ts":"1712345678.000200"}`), &m))
	assert.Equal(t, time.Unix(1712345678, 200000).UTC(), m.Timestamp.Time)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"ts":"1712345678.000200"`)

	require.NoError(t, json.Unmarshal([]byte(`{"ts":1712345678}`), &m))
	assert.Equal(t, int64(1712345678), m.Timestamp.Unix())

	assert.Error(t, json.Unmarshal([]byte(`{"ts":"yesterday"}`), &m))
}

func TestParseEpoch(t *testing.T) {
	e, err := ParseEpoch("1700000000")
	require.NoError(t, err)
	assert.Equal(t, "1700000000.000000", e.String())

	e, err = ParseEpoch("1700000000.5")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, time.Duration(e.Nanosecond()))

	e, err = ParseEpoch("")
	require.NoError(t, err)
	assert.True(t, e.IsZero())
	assert.Equal(t, "", e.String())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.12, Round2(0.1234))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.False(t, math.Signbit(Round2(-0.001)), "negative zero is normalised")
}

func TestRoundedHeatmapKeepsShape(t *testing.T) {
	h := HeatmapMatrix{Rows: []string{"a"}, Cols: []string{"x", "y"}, Values: [][]float64{{0.333, -0.666}}}
	got := h.Rounded()
	assert.Equal(t, [][]float64{{0.33, -0.67}}, got.Values)
	assert.Equal(t, 0.333, h.Values[0][0], "original untouched")
}

func TestParseEnums(t *testing.T) {
	r, err := ParseTimeRange("")
	require.NoError(t, err)
	assert.Equal(t, RangeWeek, r)
	_, err = ParseTimeRange("decade")
	assert.Error(t, err)

	p, err := ParsePerspective("team")
	require.NoError(t, err)
	assert.Equal(t, PerspectiveTeam, p)
	_, err = ParsePerspective("org")
	assert.Error(t, err)

	_, err = ParseGrouping("people")
	assert.NoError(t, err)
	_, err = ParseHeatmapMetric("emojis")
	assert.Error(t, err)

	assert.Equal(t, 2, RiskHigh.Ordinal())
	assert.Equal(t, 0, RiskLevel("unknown").Ordinal())
	assert.Equal(t, 3, RangeQuarter.SeedFactor())
}

func TestUserLabel(t *testing.T) {
	assert.Equal(t, "Alice", User{ID: "U1", Username: "alice", DisplayName: "Alice"}.Label())
	assert.Equal(t, "dave", User{ID: "U4", Username: "dave"}.Label())
	assert.Equal(t, "U9", User{ID: "U9"}.Label())
}
