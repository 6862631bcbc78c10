// Package timeline partitions an ordered photo collection into calendar-day
// buckets with human-readable relative labels.
package timeline

import (
	"time"

	"github.com/vrsandeep/truphotos-go/internal/models"
)

// Bucket is one calendar day's worth of photos. DayStart is local midnight
// of that day.
type Bucket struct {
	Label    string         `json:"label"`
	DayStart time.Time      `json:"day_start"`
	Items    []models.Photo `json:"items"`
}

// Group partitions photos into day buckets. The input must already be
// sorted descending by CreatedAt; this function does not re-sort, so a
// single pass with a running current-day comparison suffices and bucket
// order follows the input. Labels are evaluated against now, so the result
// of one call should be reused within a render pass rather than regrouped.
func Group(photos []models.Photo, now time.Time) []Bucket {
	if len(photos) == 0 {
		return nil
	}

	loc := now.Location()
	today := dayStart(now, loc)
	yesterday := today.AddDate(0, 0, -1)

	var buckets []Bucket
	var current *Bucket
	for _, photo := range photos {
		day := dayStart(photo.CreatedAt, loc)
		if current == nil || !day.Equal(current.DayStart) {
			buckets = append(buckets, Bucket{
				Label:    label(day, today, yesterday),
				DayStart: day,
			})
			current = &buckets[len(buckets)-1]
		}
		current.Items = append(current.Items, photo)
	}
	return buckets
}

// dayStart normalizes t to local midnight in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func label(day, today, yesterday time.Time) string {
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(yesterday):
		return "Yesterday"
	case day.Year() == today.Year():
		return day.Format("January 2")
	default:
		return day.Format("January 2, 2006")
	}
}
