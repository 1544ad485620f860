// Package bucket groups dated items into relative buckets (overdue, today,
// tomorrow, this week, next week, later, no date) for board views.
package bucket

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rezkam/central/internal/domain"
)

// Item is anything with an ISO due date string and a manual position.
// An empty Due means the item has no date.
type Item interface {
	Due() string
	SortPosition() float64
}

// Bucket colors.
const (
	ColorOverdue  = "#ef4444"
	ColorToday    = "#f59e0b"
	ColorTomorrow = "#3b82f6"
	ColorThisWeek = "#8b5cf6"
	ColorNextWeek = "#06b6d4"
	ColorLater    = "#6b7280"
	ColorNoDate   = "#9ca3af"
)

// labelLayout formats the date shown next to the Today and Tomorrow labels.
const labelLayout = "Jan 2"

// ID places a due date relative to today.
//
// The comparison is lexicographic on ISO "YYYY-MM-DD" strings, so due must
// be well formed; callers accepting external input run ValidateDueDate
// first. Weeks start on Monday.
func ID(due string, today domain.Date) domain.BucketID {
	if due == "" {
		return domain.BucketNoDate
	}

	todayStr := today.String()
	tomorrowStr := today.AddDays(1).String()
	endOfWeek := today.EndOfWeek()
	endOfWeekStr := endOfWeek.String()
	endOfNextWeekStr := endOfWeek.AddDays(7).String()

	switch {
	case due < todayStr:
		return domain.BucketOverdue
	case due == todayStr:
		return domain.BucketToday
	case due == tomorrowStr:
		return domain.BucketTomorrow
	case due <= endOfWeekStr:
		return domain.BucketThisWeek
	case due <= endOfNextWeekStr:
		return domain.BucketNextWeek
	default:
		return domain.BucketLater
	}
}

// Group buckets items relative to today. Every bucket key is present in the
// result, empty buckets as empty slices. Items inside a bucket are ordered
// by due date, then position; ties keep their input order.
func Group[T Item](items []T, today domain.Date) map[domain.BucketID][]T {
	groups := make(map[domain.BucketID][]T, len(domain.BucketOrder))
	for _, id := range domain.BucketOrder {
		groups[id] = []T{}
	}

	for _, item := range items {
		id := ID(item.Due(), today)
		groups[id] = append(groups[id], item)
	}

	for _, group := range groups {
		slices.SortStableFunc(group, func(a, b T) int {
			if c := cmp.Compare(a.Due(), b.Due()); c != 0 {
				return c
			}
			return cmp.Compare(a.SortPosition(), b.SortPosition())
		})
	}
	return groups
}

// Buckets returns the bucket definitions in display order. The Today and
// Tomorrow labels carry their date.
func Buckets(today domain.Date) []domain.DateBucket {
	return []domain.DateBucket{
		{ID: domain.BucketOverdue, Label: "Overdue", Color: ColorOverdue},
		{ID: domain.BucketToday, Label: "Today · " + today.Format(labelLayout), Color: ColorToday},
		{ID: domain.BucketTomorrow, Label: "Tomorrow · " + today.AddDays(1).Format(labelLayout), Color: ColorTomorrow},
		{ID: domain.BucketThisWeek, Label: "This Week", Color: ColorThisWeek},
		{ID: domain.BucketNextWeek, Label: "Next Week", Color: ColorNextWeek},
		{ID: domain.BucketLater, Label: "Later", Color: ColorLater},
		{ID: domain.BucketNoDate, Label: "No Date", Color: ColorNoDate},
	}
}

// ValidateDueDate checks that due is empty or a real calendar date in
// "YYYY-MM-DD" form.
func ValidateDueDate(due string) error {
	if due == "" {
		return nil
	}
	if _, err := domain.ParseDate(due); err != nil {
		return fmt.Errorf("due date: %w", err)
	}
	return nil
}
