// Package slack is the chat platform boundary: the Provider interface the
// aggregators consume, a deterministic demo provider, a Web API provider and
// the stores that remember which channels a workspace has selected.
package slack

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/employeepulse/pkg/models"
)

// ErrNotConnected is returned by operations that need a live workspace.
var ErrNotConnected = errors.New("slack workspace not connected")

// HistoryQuery bounds a channel history fetch to [Oldest, Latest). Zero
// instants are unbounded and a non-positive Limit means no limit.
type HistoryQuery struct {
	Oldest time.Time
	Latest time.Time
	Limit  int
}

// Matches reports whether t lies inside the query window.
func (q HistoryQuery) Matches(t time.Time) bool {
	if !q.Oldest.IsZero() && t.Before(q.Oldest) {
		return false
	}
	if !q.Latest.IsZero() && !t.Before(q.Latest) {
		return false
	}
	return true
}

// Provider is everything the aggregation core reads from the chat platform.
// ChannelMessages returns messages oldest first; when more than Limit match,
// the most recent Limit are kept.
type Provider interface {
	Connection(ctx context.Context) models.Connection
	ListChannels(ctx context.Context) ([]models.Channel, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SelectedChannels(ctx context.Context) ([]models.Channel, error)
	SelectChannels(ctx context.Context, channelIDs []string) error
	ChannelMessages(ctx context.Context, channelID string, q HistoryQuery) ([]models.Message, error)
	IsConnected(ctx context.Context) bool
}

// applyQuery filters messages to the window, sorts them oldest first and
// keeps the newest q.Limit.
func applyQuery(messages []models.Message, q HistoryQuery) []models.Message {
	out := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if q.Matches(m.Timestamp.Time) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp.Time)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out
}

// pickChannels returns the channels named by ids, in ids order. Unknown ids
// are skipped.
func pickChannels(all []models.Channel, ids []string) []models.Channel {
	byID := make(map[string]models.Channel, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make([]models.Channel, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func selectedFrom(ctx context.Context, store SelectionStore, teamID string, all []models.Channel) ([]models.Channel, error) {
	ids, err := store.Load(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return pickChannels(all, ids), nil
}
