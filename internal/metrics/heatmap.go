package metrics

import (
	"context"
	"sort"

	"github.com/employeepulse/internal/collector"
	"github.com/employeepulse/pkg/models"
)

// MaxHeatmapRows caps the number of entities shown in a heatmap.
const MaxHeatmapRows = 8

type heatmapRow struct {
	label    string
	messages []models.Message
}

// heatmapRows groups messages into row entities. Channel rows follow channel
// order, team rows are sorted by name and people rows follow first
// appearance in time.
func heatmapRows(grouping models.Grouping, channels []models.Channel, lists [][]models.Message, users map[string]models.User, teams TeamMapper) []heatmapRow {
	var rows []heatmapRow
	switch grouping {
	case models.GroupTeams:
		byTeam := make(map[string]int)
		var names []string
		merged := collector.Merge(lists)
		for _, m := range merged {
			team := teams.TeamOf(authorKey(m.AuthorID))
			if _, ok := byTeam[team]; !ok {
				byTeam[team] = len(names)
				names = append(names, team)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, heatmapRow{label: name})
		}
		pos := make(map[string]int, len(names))
		for i, name := range names {
			pos[name] = i
		}
		for _, m := range merged {
			i := pos[teams.TeamOf(authorKey(m.AuthorID))]
			rows[i].messages = append(rows[i].messages, m)
		}
	case models.GroupPeople:
		pos := make(map[string]int)
		for _, m := range collector.Merge(lists) {
			id := authorKey(m.AuthorID)
			i, ok := pos[id]
			if !ok {
				label := id
				if u, found := users[id]; found {
					label = u.Label()
				}
				i = len(rows)
				pos[id] = i
				rows = append(rows, heatmapRow{label: label})
			}
			rows[i].messages = append(rows[i].messages, m)
		}
	default:
		for i, ch := range channels {
			row := heatmapRow{label: "#" + ch.Name}
			if i < len(lists) {
				row.messages = lists[i]
			}
			rows = append(rows, row)
		}
	}
	if len(rows) > MaxHeatmapRows {
		rows = rows[:MaxHeatmapRows]
	}
	return rows
}

// buildHeatmap fills the matrix for rows over buckets. Sentiment cells call
// the analyzer per non-empty cell with at most concurrency calls in flight.
func buildHeatmap(ctx context.Context, rows []heatmapRow, buckets []models.TimeBucket, metric models.HeatmapMetric, analyzer Analyzer, concurrency int) (models.HeatmapMatrix, error) {
	matrix := models.HeatmapMatrix{
		Rows:   make([]string, len(rows)),
		Cols:   make([]string, len(buckets)),
		Values: make([][]float64, len(rows)),
	}
	for c, b := range buckets {
		matrix.Cols[c] = b.Label
	}

	cells := make([][][]models.Message, len(rows))
	for r, row := range rows {
		matrix.Rows[r] = row.label
		matrix.Values[r] = make([]float64, len(buckets))
		cells[r] = Partition(row.messages, buckets)
	}

	if metric != models.MetricSentiment {
		for r := range rows {
			for c, msgs := range cells[r] {
				switch metric {
				case models.MetricThreads:
					threads, _ := threadStats(msgs)
					matrix.Values[r][c] = float64(threads)
				default:
					matrix.Values[r][c] = float64(len(msgs))
				}
			}
		}
		return matrix, nil
	}

	cols := len(buckets)
	err := collector.Each(ctx, len(rows)*cols, concurrency, func(ctx context.Context, i int) error {
		r, c := i/cols, i%cols
		msgs := cells[r][c]
		if len(msgs) == 0 {
			return nil
		}
		summary := analyzer.Analyze(ctx, msgs)
		if err := ctx.Err(); err != nil {
			return err
		}
		matrix.Values[r][c] = summary.OverallSentiment
		return nil
	})
	if err != nil {
		return models.HeatmapMatrix{}, err
	}
	return matrix, nil
}

// Partition splits messages into per-bucket slices. Messages outside every
// bucket are dropped.
func Partition(messages []models.Message, buckets []models.TimeBucket) [][]models.Message {
	out := make([][]models.Message, len(buckets))
	for _, m := range messages {
		for i, b := range buckets {
			if b.Contains(m.Timestamp.Time) {
				out[i] = append(out[i], m)
				break
			}
		}
	}
	return out
}
