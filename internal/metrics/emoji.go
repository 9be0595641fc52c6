package metrics

import (
	"sort"

	"github.com/employeepulse/pkg/models"
)

var emojiGlyphs = map[string]string{
	"tada":             "🎉",
	"rocket":           "🚀",
	"raised_hands":     "🙌",
	"thumbsup":         "👍",
	"+1":               "👍",
	"white_check_mark": "✅",
	"heavy_check_mark": "✔️",
	"smile":            "😄",
	"simple_smile":     "🙂",
	"grinning":         "😀",
	"joy":              "😂",
	"laughing":         "😆",
	"sweat_smile":      "😅",
	"heart":            "❤️",
	"fire":             "🔥",
	"pray":             "🙏",
	"clap":             "👏",
	"eyes":             "👀",
	"bulb":             "💡",
	"handshake":        "🤝",
	"brain":            "🧠",
	"sparkles":         "✨",
	"star":             "⭐",
	"confetti_ball":    "🎊",
	"100":              "💯",
}

// Glyph maps a reaction shortcode to its display glyph. Unknown names pass
// through unchanged.
func Glyph(name string) string {
	if g, ok := emojiGlyphs[name]; ok {
		return g
	}
	return name
}

// TopEmojis counts reactions by name, weighted by how many users reacted,
// and returns the top limit by count. Equal counts keep first-seen order.
func TopEmojis(messages []models.Message, limit int) []models.EmojiStat {
	if limit <= 0 {
		return []models.EmojiStat{}
	}

	index := make(map[string]int)
	var stats []models.EmojiStat
	for _, m := range messages {
		for _, r := range m.Reactions {
			i, ok := index[r.Name]
			if !ok {
				i = len(stats)
				index[r.Name] = i
				display := Glyph(r.Name)
				if display == r.Name && r.EmojiGlyph != "" {
					display = r.EmojiGlyph
				}
				stats = append(stats, models.EmojiStat{Emoji: display})
			}
			stats[i].Count += r.Count()
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	if stats == nil {
		stats = []models.EmojiStat{}
	}
	return stats
}
