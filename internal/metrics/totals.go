package metrics

import (
	"sort"

	"github.com/employeepulse/pkg/models"
)

// ChannelTotals builds one total per channel, in channel order. Channels that
// carry their own thread structure are counted from it; otherwise the
// fetched messages at the same index are used.
func ChannelTotals(channels []models.Channel, lists [][]models.Message) []models.EntityTotal {
	out := make([]models.EntityTotal, 0, len(channels))
	for i, ch := range channels {
		total := models.EntityTotal{ID: ch.ID, Name: "#" + ch.Name}
		if len(ch.Threads) > 0 {
			for _, t := range ch.Threads {
				total.MessageCount += len(t.Messages)
				total.ResponseCount += threadResponses(t)
				total.EmojiCount += emojiCount(t.Messages)
			}
			total.ThreadCount = len(ch.Threads)
		} else {
			var msgs []models.Message
			if i < len(lists) {
				msgs = lists[i]
			}
			total.MessageCount = len(msgs)
			total.ThreadCount, total.ResponseCount = threadStats(msgs)
			total.EmojiCount = emojiCount(msgs)
		}
		out = append(out, total)
	}
	return out
}

// EmployeeTotals groups messages by author, ordered by user id.
func EmployeeTotals(lists [][]models.Message, users map[string]models.User) []models.EntityTotal {
	all := flatten(lists)
	return groupTotals(all, func(userID string) (string, string) {
		id := authorKey(userID)
		if u, ok := users[id]; ok {
			return id, u.Label()
		}
		return id, id
	}, func(a, b models.EntityTotal) bool { return a.ID < b.ID })
}

// TeamTotals groups messages by the author's team, ordered by team name.
func TeamTotals(lists [][]models.Message, teams TeamMapper) []models.EntityTotal {
	all := flatten(lists)
	return groupTotals(all, func(userID string) (string, string) {
		team := teams.TeamOf(authorKey(userID))
		return TeamID(team), team
	}, func(a, b models.EntityTotal) bool { return a.Name < b.Name })
}

// groupTotals aggregates messages under the entity key returns.
func groupTotals(all []models.Message, key func(userID string) (id, name string), less func(a, b models.EntityTotal) bool) []models.EntityTotal {
	byID := make(map[string]*models.EntityTotal)
	for _, m := range all {
		id, name := key(m.AuthorID)
		total, ok := byID[id]
		if !ok {
			total = &models.EntityTotal{ID: id, Name: name}
			byID[id] = total
		}
		total.MessageCount++
		total.EmojiCount += m.ReactionCount()
	}

	out := make([]models.EntityTotal, 0, len(byID))
	for id, total := range byID {
		total.ThreadCount, total.ResponseCount = authoredStats(all, func(userID string) bool {
			entity, _ := key(userID)
			return entity == id
		})
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func authorKey(userID string) string {
	if userID == "" {
		return "unknown"
	}
	return userID
}

func flatten(lists [][]models.Message) []models.Message {
	var out []models.Message
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
