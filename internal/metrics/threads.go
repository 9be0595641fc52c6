package metrics

import (
	"github.com/employeepulse/pkg/models"
)

// GroupThreads rebuilds threads from per-message thread metadata. Threads are
// ordered by first appearance and the root, when present, is placed first.
// Messages without thread metadata are not part of any thread.
func GroupThreads(messages []models.Message) []models.Thread {
	index := make(map[string]int)
	var threads []models.Thread
	for _, m := range messages {
		if m.ThreadTS == "" {
			continue
		}
		i, ok := index[m.ThreadTS]
		if !ok {
			i = len(threads)
			index[m.ThreadTS] = i
			threads = append(threads, models.Thread{ID: m.ThreadTS})
		}
		t := &threads[i]
		if isRoot(m) {
			t.RootMessageID = m.ID
			t.Messages = append([]models.Message{m}, t.Messages...)
		} else {
			t.Messages = append(t.Messages, m)
		}
		if m.Timestamp.After(t.LastActivityTimestamp.Time) {
			t.LastActivityTimestamp = m.Timestamp
		}
	}
	return threads
}

func isRoot(m models.Message) bool {
	if m.ThreadTS == "" {
		return false
	}
	ts, err := models.ParseEpoch(m.ThreadTS)
	return err == nil && ts.Equal(m.Timestamp.Time)
}

func hasThreadMetadata(messages []models.Message) bool {
	for _, m := range messages {
		if m.ThreadTS != "" {
			return true
		}
	}
	return false
}

// threadResponses counts non-root messages. A root's reply count covers
// replies the history endpoint did not return.
func threadResponses(t models.Thread) int {
	if t.RootMessageID == "" {
		return len(t.Messages)
	}
	observed := len(t.Messages) - 1
	if reported := t.Messages[0].ReplyCount; reported > observed {
		return reported
	}
	return observed
}

// threadStats returns thread and response counts for a message set. Without
// any thread metadata it falls back to threads = n/5 and responses = n - n/5.
func threadStats(messages []models.Message) (threads, responses int) {
	n := len(messages)
	if !hasThreadMetadata(messages) {
		return n / 5, n - n/5
	}
	for _, t := range GroupThreads(messages) {
		if t.RootMessageID != "" {
			threads++
		}
		responses += threadResponses(t)
	}
	return threads, responses
}

// authoredStats counts the threads a subset of authors started and the
// replies they wrote, judged against the thread structure of all messages.
func authoredStats(all []models.Message, authored func(userID string) bool) (threads, responses int) {
	if !hasThreadMetadata(all) {
		n := 0
		for _, m := range all {
			if authored(m.AuthorID) {
				n++
			}
		}
		return n / 5, n - n/5
	}
	for _, m := range all {
		if !authored(m.AuthorID) || m.ThreadTS == "" {
			continue
		}
		if isRoot(m) {
			threads++
		} else {
			responses++
		}
	}
	return threads, responses
}

func emojiCount(messages []models.Message) int {
	total := 0
	for _, m := range messages {
		total += m.ReactionCount()
	}
	return total
}
