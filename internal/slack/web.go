package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/employeepulse/pkg/models"
)

const (
	defaultBaseURL  = "https://slack.com/api"
	defaultPageSize = 200
)

// WebOptions configures a WebProvider.
type WebOptions struct {
	Token             string
	BaseURL           string
	TeamID            string
	TeamName          string
	HistoryLimit      int
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// WebProvider reads a workspace through the Slack Web API with a bot token.
type WebProvider struct {
	opts        WebOptions
	store       SelectionStore
	httpClient  *http.Client
	RateLimiter *rate.Limiter
}

func NewWebProvider(opts WebOptions, store SelectionStore) *WebProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	burst := int(opts.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &WebProvider{
		opts:        opts,
		store:       store,
		httpClient:  client,
		RateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
	}
}

func (p *WebProvider) Connection(ctx context.Context) models.Connection {
	return models.Connection{TeamID: p.opts.TeamID, TeamName: p.opts.TeamName, IsConnected: p.IsConnected(ctx)}
}

func (p *WebProvider) IsConnected(ctx context.Context) bool {
	return p.opts.Token != ""
}

type apiEnvelope struct {
	OK               bool   `json:"ok"`
	Error            string `json:"error"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type apiChannel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
}

type apiUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
	IsBot   bool   `json:"is_bot"`
	Profile struct {
		DisplayName string `json:"display_name"`
		RealName    string `json:"real_name"`
		Image72     string `json:"image_72"`
	} `json:"profile"`
}

type apiReaction struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

type apiMessage struct {
	Type        string        `json:"type"`
	ClientMsgID string        `json:"client_msg_id"`
	User        string        `json:"user"`
	Text        string        `json:"text"`
	TS          string        `json:"ts"`
	ThreadTS    string        `json:"thread_ts"`
	ReplyCount  int           `json:"reply_count"`
	Reactions   []apiReaction `json:"reactions"`
}

func (p *WebProvider) ListChannels(ctx context.Context) ([]models.Channel, error) {
	var out []models.Channel
	cursor := ""
	for {
		var page struct {
			apiEnvelope
			Channels []apiChannel `json:"channels"`
		}
		params := url.Values{
			"types":            {"public_channel,private_channel"},
			"exclude_archived": {"true"},
			"limit":            {strconv.Itoa(defaultPageSize)},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		if err := p.call(ctx, "conversations.list", params, &page, &page.apiEnvelope); err != nil {
			return nil, err
		}
		for _, c := range page.Channels {
			out = append(out, models.Channel{ID: c.ID, Name: c.Name, IsPrivate: c.IsPrivate})
		}
		cursor = page.ResponseMetadata.NextCursor
		if cursor == "" {
			return out, nil
		}
	}
}

func (p *WebProvider) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	cursor := ""
	for {
		var page struct {
			apiEnvelope
			Members []apiUser `json:"members"`
		}
		params := url.Values{"limit": {strconv.Itoa(defaultPageSize)}}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		if err := p.call(ctx, "users.list", params, &page, &page.apiEnvelope); err != nil {
			return nil, err
		}
		for _, u := range page.Members {
			if u.Deleted {
				continue
			}
			display := u.Profile.DisplayName
			if display == "" {
				display = u.Profile.RealName
			}
			out = append(out, models.User{
				ID:          u.ID,
				Username:    u.Name,
				DisplayName: display,
				AvatarURL:   u.Profile.Image72,
				IsBot:       u.IsBot,
			})
		}
		cursor = page.ResponseMetadata.NextCursor
		if cursor == "" {
			return out, nil
		}
	}
}

func (p *WebProvider) SelectedChannels(ctx context.Context) ([]models.Channel, error) {
	ids, err := p.store.Load(ctx, p.opts.TeamID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	all, err := p.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	return pickChannels(all, ids), nil
}

func (p *WebProvider) SelectChannels(ctx context.Context, channelIDs []string) error {
	return p.store.Save(ctx, p.opts.TeamID, channelIDs)
}

// ChannelMessages pages through conversations.history, newest first on the
// wire, until the window or the limit is exhausted.
func (p *WebProvider) ChannelMessages(ctx context.Context, channelID string, q HistoryQuery) ([]models.Message, error) {
	if !p.IsConnected(ctx) {
		return nil, ErrNotConnected
	}
	limit := q.Limit
	if limit <= 0 {
		limit = p.opts.HistoryLimit
	}
	q.Limit = limit

	var collected []models.Message
	cursor := ""
	for {
		var page struct {
			apiEnvelope
			Messages []apiMessage `json:"messages"`
			HasMore  bool         `json:"has_more"`
		}
		params := url.Values{
			"channel":   {channelID},
			"limit":     {strconv.Itoa(defaultPageSize)},
			"inclusive": {"true"},
		}
		if !q.Oldest.IsZero() {
			params.Set("oldest", models.NewEpochTime(q.Oldest).String())
		}
		if !q.Latest.IsZero() {
			params.Set("latest", models.NewEpochTime(q.Latest).String())
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		if err := p.call(ctx, "conversations.history", params, &page, &page.apiEnvelope); err != nil {
			return nil, err
		}

		for _, m := range page.Messages {
			msg, ok := convertMessage(m)
			if !ok {
				continue
			}
			collected = append(collected, msg)
		}

		cursor = page.ResponseMetadata.NextCursor
		if !page.HasMore || cursor == "" || (limit > 0 && len(collected) >= limit) {
			break
		}
	}

	return applyQuery(collected, q), nil
}

func convertMessage(m apiMessage) (models.Message, bool) {
	if m.Type != "" && m.Type != "message" {
		return models.Message{}, false
	}
	ts, err := models.ParseEpoch(m.TS)
	if err != nil || ts.IsZero() {
		log.Debug().Str("ts", m.TS).Msg("Skipping message with unparseable timestamp")
		return models.Message{}, false
	}
	id := m.ClientMsgID
	if id == "" {
		id = m.TS
	}
	msg := models.Message{
		ID:         id,
		AuthorID:   m.User,
		Text:       m.Text,
		Timestamp:  ts,
		ThreadTS:   m.ThreadTS,
		ReplyCount: m.ReplyCount,
	}
	for _, r := range m.Reactions {
		msg.Reactions = append(msg.Reactions, models.Reaction{Name: r.Name, UserIDs: r.Users})
	}
	return msg, true
}

// call performs one rate-limited GET against a Web API method.
func (p *WebProvider) call(ctx context.Context, method string, params url.Values, out any, env *apiEnvelope) error {
	if err := p.RateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("slack %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.BaseURL+"/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("slack %s: failed to create request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.opts.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack %s: unexpected status %d", method, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("slack %s: failed to decode response: %w", method, err)
	}
	if !env.OK {
		return fmt.Errorf("slack %s: %s", method, env.Error)
	}
	return nil
}
