// Package timebucket splits a dashboard range into contiguous, labelled
// half-open intervals ending at a caller-supplied instant.
package timebucket

import (
	"fmt"
	"strconv"
	"time"

	"github.com/employeepulse/pkg/models"
)

const day = 24 * time.Hour

type layout struct {
	count int
	width time.Duration
	label func(time.Time) string
}

var layouts = map[models.TimeRange]layout{
	models.RangeWeek:    {count: 7, width: day, label: func(t time.Time) string { return t.Format("Mon") }},
	models.RangeMonth:   {count: 30, width: day, label: func(t time.Time) string { return strconv.Itoa(t.Day()) }},
	models.RangeQuarter: {count: 12, width: 7 * day, label: func(t time.Time) string { return t.Format("Jan") }},
	models.RangeYear:    {count: 12, width: 30 * day, label: func(t time.Time) string { return t.Format("Jan") }},
}

// Buckets returns the buckets for r ordered oldest to newest. Bucket i counted
// from the newest covers [now-(i+1)*width, now-i*width). Labels are derived
// from each bucket's end instant.
func Buckets(r models.TimeRange, now time.Time) ([]models.TimeBucket, error) {
	l, ok := layouts[r]
	if !ok {
		return nil, fmt.Errorf("unknown range %q", r)
	}

	buckets := make([]models.TimeBucket, l.count)
	for i := 0; i < l.count; i++ {
		end := now.Add(-time.Duration(i) * l.width)
		start := end.Add(-l.width)
		buckets[l.count-1-i] = models.TimeBucket{
			Label: l.label(end),
			Start: start,
			End:   end,
		}
	}
	return buckets, nil
}

// WindowDays is the lookback used by non-bucketed aggregations.
func WindowDays(r models.TimeRange) int {
	switch r {
	case models.RangeMonth:
		return 30
	case models.RangeQuarter:
		return 90
	case models.RangeYear:
		return 365
	default:
		return 7
	}
}

// Window returns [now - WindowDays(r), now).
func Window(r models.TimeRange, now time.Time) models.TimeBucket {
	return models.TimeBucket{
		Label: string(r),
		Start: now.Add(-time.Duration(WindowDays(r)) * day),
		End:   now,
	}
}
