package slack

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employeepulse/pkg/models"
)

var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func msgAt(id string, t time.Time) models.Message {
	return models.Message{ID: id, Timestamp: models.NewEpochTime(t)}
}

func TestApplyQuery(t *testing.T) {
	msgs := []models.Message{
		msgAt("c", fixedNow.Add(-1*time.Hour)),
		msgAt("a", fixedNow.Add(-3*time.Hour)),
		msgAt("b", fixedNow.Add(-2*time.Hour)),
		msgAt("old", fixedNow.Add(-48*time.Hour)),
	}

	got := applyQuery(msgs, HistoryQuery{Oldest: fixedNow.Add(-24 * time.Hour), Latest: fixedNow.Add(-1 * time.Hour)})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	got = applyQuery(msgs, HistoryQuery{Limit: 2})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID, "limit keeps the most recent messages")
	assert.Equal(t, "c", got[1].ID)
}

func TestDemoProviderChannels(t *testing.T) {
	p := NewDemoProvider("T-DEMO", "Demo", NewMemorySelectionStore(), clock)
	ctx := context.Background()

	assert.False(t, p.IsConnected(ctx))
	assert.Equal(t, models.Connection{TeamID: "T-DEMO", TeamName: "Demo"}, p.Connection(ctx))

	channels, err := p.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 3)
	assert.Equal(t, "C-general", channels[0].ID)

	users, err := p.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func TestDemoProviderMessages(t *testing.T) {
	p := NewDemoProvider("T-DEMO", "Demo", NewMemorySelectionStore(), clock)
	ctx := context.Background()

	week := HistoryQuery{Oldest: fixedNow.AddDate(0, 0, -7), Latest: fixedNow}
	msgs, err := p.ChannelMessages(ctx, "C-eng", week)
	require.NoError(t, err)
	require.NotEmpty(t, msgs)

	assert.True(t, sort.SliceIsSorted(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp.Time)
	}))
	for _, m := range msgs {
		assert.True(t, week.Matches(m.Timestamp.Time))
	}

	again, err := p.ChannelMessages(ctx, "C-eng", week)
	require.NoError(t, err)
	assert.Equal(t, msgs, again)

	year, err := p.ChannelMessages(ctx, "C-eng", HistoryQuery{})
	require.NoError(t, err)
	threaded := 0
	for _, m := range year {
		if m.ReplyCount > 0 {
			threaded++
			assert.Equal(t, m.Timestamp.String(), m.ThreadTS)
		}
	}
	assert.Positive(t, threaded)

	limited, err := p.ChannelMessages(ctx, "C-eng", HistoryQuery{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, year[len(year)-5:], limited)

	_, err = p.ChannelMessages(ctx, "C-missing", week)
	assert.Error(t, err)
}

func TestDemoProviderSelection(t *testing.T) {
	p := NewDemoProvider("T-DEMO", "Demo", NewMemorySelectionStore(), clock)
	ctx := context.Background()

	selected, err := p.SelectedChannels(ctx)
	require.NoError(t, err)
	assert.Empty(t, selected)

	require.NoError(t, p.SelectChannels(ctx, []string{"C-random", "C-unknown", "C-general", "C-random"}))
	selected, err = p.SelectedChannels(ctx)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "C-random", selected[0].ID)
	assert.Equal(t, "C-general", selected[1].ID)
}

func TestMemorySelectionStore(t *testing.T) {
	store := NewMemorySelectionStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "T1", []string{"C2", "C1", "C2", ""}))
	ids, err := store.Load(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C2", "C1"}, ids)

	ids, err = store.Load(ctx, "T2")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileSelectionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "pulse.json")
	store := NewFileSelectionStore(path)
	ctx := context.Background()

	ids, err := store.Load(ctx, "T1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save(ctx, "T1", []string{"C1", "C1", "C3"}))
	require.NoError(t, store.Save(ctx, "T2", []string{"C9"}))

	reopened := NewFileSelectionStore(path)
	ids, err = reopened.Load(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C3"}, ids)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"selected_channel_ids"`)
}

func TestFileSelectionStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileSelectionStore(path).Load(context.Background(), "T1")
	assert.Error(t, err)
}

func TestPostgresSelectionStore(t *testing.T) {
	dsn := os.Getenv("PULSE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PULSE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := OpenPostgresSelectionStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	team := "T-test-" + time.Now().Format("150405.000000")
	require.NoError(t, store.Save(ctx, team, []string{"C2", "C1", "C2"}))
	ids, err := store.Load(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, []string{"C2", "C1"}, ids)

	require.NoError(t, store.Save(ctx, team, nil))
	ids, err = store.Load(ctx, team)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
