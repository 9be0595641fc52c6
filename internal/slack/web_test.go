package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employeepulse/pkg/models"
)

func newTestWebProvider(t *testing.T, handler http.HandlerFunc) *WebProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWebProvider(WebOptions{
		Token:             "xoxb-test",
		BaseURL:           srv.URL,
		TeamID:            "T1",
		TeamName:          "Acme",
		HistoryLimit:      1000,
		RequestsPerSecond: 1000,
	}, NewMemorySelectionStore())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestWebProviderListChannelsPaginates(t *testing.T) {
	p := newTestWebProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations.list", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		if r.URL.Query().Get("cursor") == "" {
			writeJSON(w, map[string]any{
				"ok":                true,
				"channels":          []map[string]any{{"id": "C1", "name": "general"}},
				"response_metadata": map[string]any{"next_cursor": "page2"},
			})
			return
		}
		writeJSON(w, map[string]any{
			"ok":       true,
			"channels": []map[string]any{{"id": "C2", "name": "secret", "is_private": true}},
		})
	})

	channels, err := p.ListChannels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Channel{
		{ID: "C1", Name: "general"},
		{ID: "C2", Name: "secret", IsPrivate: true},
	}, channels)
}

func TestWebProviderListUsers(t *testing.T) {
	p := newTestWebProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ok": true,
			"members": []map[string]any{
				{"id": "U1", "name": "alice", "profile": map[string]any{"display_name": "Alice", "image_72": "http://img/a"}},
				{"id": "U2", "name": "bob", "profile": map[string]any{"real_name": "Bob B"}},
				{"id": "U3", "name": "gone", "deleted": true},
				{"id": "B1", "name": "bot", "is_bot": true},
			},
		})
	})

	users, err := p.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Alice", users[0].DisplayName)
	assert.Equal(t, "http://img/a", users[0].AvatarURL)
	assert.Equal(t, "Bob B", users[1].DisplayName)
	assert.True(t, users[2].IsBot)
}

func TestWebProviderChannelMessages(t *testing.T) {
	p := newTestWebProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/conversations.history", r.URL.Path)
		assert.Equal(t, "C1", q.Get("channel"))
		assert.Equal(t, "1700000000.000000", q.Get("oldest"))
		writeJSON(w, map[string]any{
			"ok": true,
			"messages": []map[string]any{
				{"type": "message", "user": "U2", "text": "newest", "ts": "1700000300.000100",
					"reactions": []map[string]any{{"name": "tada", "users": []string{"U1", "U3"}, "count": 2}}},
				{"type": "message", "user": "U1", "text": "root", "ts": "1700000100.000000", "thread_ts": "1700000100.000000", "reply_count": 3, "client_msg_id": "abc"},
				{"type": "message", "user": "U1", "text": "bad ts", "ts": "nope"},
			},
		})
	})

	q := HistoryQuery{Oldest: time.Unix(1700000000, 0)}
	msgs, err := p.ChannelMessages(context.Background(), "C1", q)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "abc", msgs[0].ID)
	assert.Equal(t, 3, msgs[0].ReplyCount)
	assert.Equal(t, "1700000100.000000", msgs[0].ThreadTS)
	assert.Equal(t, "1700000300.000100", msgs[1].ID)
	assert.Equal(t, 2, msgs[1].ReactionCount())
}

func TestWebProviderAPIError(t *testing.T) {
	p := newTestWebProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": false, "error": "invalid_auth"})
	})
	_, err := p.ListChannels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversations.list")
	assert.Contains(t, err.Error(), "invalid_auth")
}

func TestWebProviderHTTPError(t *testing.T) {
	p := newTestWebProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := p.ChannelMessages(context.Background(), "C1", HistoryQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestWebProviderNoToken(t *testing.T) {
	p := NewWebProvider(WebOptions{TeamID: "T1"}, NewMemorySelectionStore())
	assert.False(t, p.IsConnected(context.Background()))
	_, err := p.ChannelMessages(context.Background(), "C1", HistoryQuery{})
	assert.ErrorIs(t, err, ErrNotConnected)
}
