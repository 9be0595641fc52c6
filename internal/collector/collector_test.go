package collector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employeepulse/internal/slack"
	"github.com/employeepulse/pkg/models"
)

type fakeProvider struct {
	connected   bool
	channels    []models.Channel
	selected    []models.Channel
	selectedErr error
	listErr     error
	messages    map[string][]models.Message
	failing     map[string]bool

	mu      sync.Mutex
	queries []slack.HistoryQuery
}

func (f *fakeProvider) Connection(ctx context.Context) models.Connection {
	return models.Connection{IsConnected: f.connected}
}
func (f *fakeProvider) ListChannels(ctx context.Context) ([]models.Channel, error) {
	return f.channels, f.listErr
}
func (f *fakeProvider) ListUsers(ctx context.Context) ([]models.User, error) { return nil, nil }
func (f *fakeProvider) SelectedChannels(ctx context.Context) ([]models.Channel, error) {
	return f.selected, f.selectedErr
}
func (f *fakeProvider) SelectChannels(ctx context.Context, ids []string) error { return nil }
func (f *fakeProvider) IsConnected(ctx context.Context) bool { return f.connected }
func (f *fakeProvider) ChannelMessages(ctx context.Context, id string, q slack.HistoryQuery) ([]models.Message, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.failing[id] {
		return nil, errors.New("upstream unavailable")
	}
	return f.messages[id], nil
}

var channels = []models.Channel{{ID: "C1", Name: "one"}, {ID: "C2", Name: "two"}, {ID: "C3", Name: "three"}}

func TestResolveChannels(t *testing.T) {
	ctx := context.Background()

	t.Run("override keeps order and names", func(t *testing.T) {
		c := New(&fakeProvider{channels: channels, selected: channels[:1]}, 2)
		got, err := c.ResolveChannels(ctx, []string{"C3", "C9", "C3", "C1"})
		require.NoError(t, err)
		assert.Equal(t, []models.Channel{channels[2], {ID: "C9", Name: "C9"}, channels[0]}, got)
	})

	t.Run("selected wins", func(t *testing.T) {
		c := New(&fakeProvider{connected: true, channels: channels, selected: channels[1:2]}, 2)
		got, err := c.ResolveChannels(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, channels[1:2], got)
	})

	t.Run("disconnected falls back to all", func(t *testing.T) {
		c := New(&fakeProvider{channels: channels}, 2)
		got, err := c.ResolveChannels(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, channels, got)
	})

	t.Run("connected without selection is empty", func(t *testing.T) {
		c := New(&fakeProvider{connected: true, channels: channels}, 2)
		got, err := c.ResolveChannels(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("selection store failure", func(t *testing.T) {
		c := New(&fakeProvider{selectedErr: errors.New("disk")}, 2)
		_, err := c.ResolveChannels(ctx, nil)
		assert.ErrorIs(t, err, ErrResolveChannels)
	})

	t.Run("listing failure while disconnected", func(t *testing.T) {
		c := New(&fakeProvider{listErr: errors.New("down")}, 2)
		_, err := c.ResolveChannels(ctx, nil)
		assert.ErrorIs(t, err, ErrResolveChannels)
	})
}

func TestFetchIsolatesFailures(t *testing.T) {
	now := time.Unix(1700000000, 0)
	p := &fakeProvider{
		messages: map[string][]models.Message{
			"C1": {{ID: "a", Timestamp: models.NewEpochTime(now)}},
			"C3": {{ID: "c", Timestamp: models.NewEpochTime(now)}},
		},
		failing: map[string]bool{"C2": true},
	}
	q := slack.HistoryQuery{Oldest: now.Add(-time.Hour), Latest: now}

	got, err := New(p, 2).Fetch(context.Background(), channels, q)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0][0].ID)
	assert.Empty(t, got[1])
	assert.Equal(t, "c", got[2][0].ID)

	for _, seen := range p.queries {
		assert.Equal(t, q, seen)
	}
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &fakeProvider{failing: map[string]bool{"C1": true, "C2": true, "C3": true}}

	_, err := New(p, 1).Fetch(ctx, channels, slack.HistoryQuery{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEachLimit(t *testing.T) {
	var inFlight, peak int32
	err := Each(context.Background(), 20, 3, func(ctx context.Context, i int) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int32(3))
}

func TestMerge(t *testing.T) {
	at := func(id string, sec int64) models.Message {
		return models.Message{ID: id, Timestamp: models.NewEpochTime(time.Unix(sec, 0))}
	}
	got := Merge([][]models.Message{{at("a", 2), at("b", 5)}, nil, {at("c", 1), at("d", 5)}})
	ids := make([]string, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids)
}
