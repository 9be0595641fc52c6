package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/employeepulse/pkg/models"
)

const demoHistoryDays = 365

var (
	demoUsers = []models.User{
		{ID: "U01", Username: "alice", DisplayName: "Alice"},
		{ID: "U02", Username: "bob", DisplayName: "Bob"},
		{ID: "U03", Username: "carol", DisplayName: "Carol"},
		{ID: "U04", Username: "dave"},
	}

	demoChannels = []models.Channel{
		{ID: "C-general", Name: "general", MemberUserIDs: []string{"U01", "U02", "U03", "U04"}},
		{ID: "C-eng", Name: "eng-announcements", MemberUserIDs: []string{"U01", "U02", "U04"}},
		{ID: "C-random", Name: "random", MemberUserIDs: []string{"U03", "U04"}},
	}

	demoPhrases = []string{
		"Welcome to Employee Pulse!",
		"Great demo today, thanks everyone",
		"Let's keep an eye on burnout and PTO coverage.",
		"Release is blocked on the flaky integration test",
		"Nice work on the migration, well done",
		"Deadline moved up again, feeling the stress",
		"Lunch at noon?",
		"Stuck on the billing bug, could use a hand",
		"We ship the new onboarding flow on Friday",
		"Honestly exhausted after this sprint",
		"Happy to pair on this if anyone is free",
		"Standup notes are in the doc",
		"The deploy was late but it worked",
		"Love the new dashboard colours",
		"Tired of the pager going off at night",
	}

	demoReactions = []string{"tada", "thumbsup", "rocket", "heart", "eyes", "fire", "party_parrot"}
)

// DemoProvider serves deterministic fixture data relative to its clock. It
// reports itself as disconnected so the core falls back to all channels.
type DemoProvider struct {
	teamID   string
	teamName string
	store    SelectionStore
	now      func() time.Time
}

func NewDemoProvider(teamID, teamName string, store SelectionStore, now func() time.Time) *DemoProvider {
	if now == nil {
		now = time.Now
	}
	return &DemoProvider{teamID: teamID, teamName: teamName, store: store, now: now}
}

func (p *DemoProvider) Connection(ctx context.Context) models.Connection {
	return models.Connection{TeamID: p.teamID, TeamName: p.teamName, IsConnected: false}
}

func (p *DemoProvider) IsConnected(ctx context.Context) bool {
	return false
}

func (p *DemoProvider) ListChannels(ctx context.Context) ([]models.Channel, error) {
	out := make([]models.Channel, len(demoChannels))
	for i, c := range demoChannels {
		c.MemberUserIDs = append([]string(nil), c.MemberUserIDs...)
		out[i] = c
	}
	return out, nil
}

func (p *DemoProvider) ListUsers(ctx context.Context) ([]models.User, error) {
	return append([]models.User(nil), demoUsers...), nil
}

func (p *DemoProvider) SelectedChannels(ctx context.Context) ([]models.Channel, error) {
	all, _ := p.ListChannels(ctx)
	return selectedFrom(ctx, p.store, p.teamID, all)
}

func (p *DemoProvider) SelectChannels(ctx context.Context, channelIDs []string) error {
	return p.store.Save(ctx, p.teamID, channelIDs)
}

func (p *DemoProvider) ChannelMessages(ctx context.Context, channelID string, q HistoryQuery) ([]models.Message, error) {
	idx := -1
	for i, c := range demoChannels {
		if c.ID == channelID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return applyQuery(demoHistory(idx, p.now()), q), nil
}

// demoHistory builds a year of messages for one channel. One to four
// messages per day; on every third day the later messages reply in a thread
// under the first one.
func demoHistory(ci int, now time.Time) []models.Message {
	now = now.UTC().Truncate(time.Second)
	channelID := demoChannels[ci].ID

	var out []models.Message
	for d := demoHistoryDays - 1; d >= 0; d-- {
		n := 1 + (d+2*ci)%4
		dayEnd := now.Add(-time.Duration(d)*24*time.Hour - time.Duration(ci*11+1)*time.Minute)
		threaded := (d+ci)%3 == 0 && n > 1

		rootIdx := -1
		for k := 0; k < n; k++ {
			ts := models.NewEpochTime(dayEnd.Add(-time.Duration(n-k) * 37 * time.Minute))
			msg := models.Message{
				ID:        fmt.Sprintf("%s-%03d-%d", channelID, d, k),
				AuthorID:  demoUsers[(d+k+ci)%len(demoUsers)].ID,
				Text:      demoPhrases[(d*3+k*7+ci*5)%len(demoPhrases)],
				Timestamp: ts,
			}
			if (d+k)%4 == 0 {
				msg.Reactions = demoReactionsFor(d, k, ci)
			}
			if threaded {
				if k == 0 {
					msg.ThreadTS = ts.String()
					rootIdx = len(out)
				} else {
					msg.ThreadTS = out[rootIdx].ThreadTS
					out[rootIdx].ReplyCount++
				}
			}
			out = append(out, msg)
		}
	}
	return out
}

func demoReactionsFor(d, k, ci int) []models.Reaction {
	name := demoReactions[(d+ci)%len(demoReactions)]
	users := make([]string, 0, 3)
	for u := 0; u <= (d+k)%3; u++ {
		users = append(users, demoUsers[(u+ci)%len(demoUsers)].ID)
	}
	reactions := []models.Reaction{{Name: name, UserIDs: users}}
	if d%5 == 0 {
		reactions = append(reactions, models.Reaction{
			Name:    demoReactions[(d+k+1)%len(demoReactions)],
			UserIDs: []string{demoUsers[(d+1)%len(demoUsers)].ID},
		})
	}
	return reactions
}
