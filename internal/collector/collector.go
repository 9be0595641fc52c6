// Package collector resolves which channels an aggregation covers and fetches
// their history concurrently, merging results in a stable order.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/employeepulse/internal/slack"
	"github.com/employeepulse/pkg/models"
)

// ErrResolveChannels means the channel set could not be determined at all.
var ErrResolveChannels = errors.New("failed to resolve channels")

const defaultConcurrency = 4

type Collector struct {
	provider    slack.Provider
	concurrency int
}

func New(provider slack.Provider, concurrency int) *Collector {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Collector{provider: provider, concurrency: concurrency}
}

// Provider exposes the underlying chat platform provider.
func (c *Collector) Provider() slack.Provider {
	return c.provider
}

// Concurrency is the fan-out limit used for per-channel work.
func (c *Collector) Concurrency() int {
	return c.concurrency
}

// ResolveChannels picks the channel set: the explicit override if given,
// else the stored selection, else every channel but only while disconnected.
// A connected workspace with nothing selected resolves to no channels.
func (c *Collector) ResolveChannels(ctx context.Context, override []string) ([]models.Channel, error) {
	if len(override) > 0 {
		return c.overrideChannels(ctx, override), nil
	}

	selected, err := c.provider.SelectedChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: selected channels: %w", ErrResolveChannels, err)
	}
	if len(selected) > 0 {
		return selected, nil
	}

	if c.provider.IsConnected(ctx) {
		return []models.Channel{}, nil
	}

	all, err := c.provider.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list channels: %w", ErrResolveChannels, err)
	}
	return all, nil
}

func (c *Collector) overrideChannels(ctx context.Context, ids []string) []models.Channel {
	names := make(map[string]models.Channel)
	all, err := c.provider.ListChannels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list channels for override names; using ids")
	}
	for _, ch := range all {
		names[ch.ID] = ch
	}

	seen := make(map[string]bool, len(ids))
	out := make([]models.Channel, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if ch, ok := names[id]; ok {
			out = append(out, ch)
			continue
		}
		out = append(out, models.Channel{ID: id, Name: id})
	}
	return out
}

// Fetch returns each channel's messages for q, indexed like channels. A
// failing channel is logged and contributes an empty list; only
// cancellation aborts the whole fetch.
func (c *Collector) Fetch(ctx context.Context, channels []models.Channel, q slack.HistoryQuery) ([][]models.Message, error) {
	out := make([][]models.Message, len(channels))
	err := Each(ctx, len(channels), c.concurrency, func(ctx context.Context, i int) error {
		msgs, err := c.provider.ChannelMessages(ctx, channels[i].ID, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn().
				Err(err).
				Str("channel", channels[i].ID).
				Msg("Failed to fetch channel messages; treating as empty")
			msgs = nil
		}
		out[i] = msgs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Each calls fn for every index in [0, n) with at most limit calls in flight
// and returns the first error. Calls not yet started when ctx is done are
// skipped.
func Each(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}

// Merge concatenates per-channel lists in channel order and stably sorts the
// result oldest first.
func Merge(lists [][]models.Message) []models.Message {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]models.Message, 0, total)
	for _, l := range lists {
		out = append(out, l...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp.Time)
	})
	return out
}
