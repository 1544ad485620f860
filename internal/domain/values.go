package domain

import "fmt"

// Frequency is the repeat cadence of a recurring task definition.
// Value object - immutable string enum.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// RequiresDaysOfWeek reports whether the frequency is anchored to weekdays.
func (f Frequency) RequiresDaysOfWeek() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly
}

// MonthlyPattern selects how a monthly recurrence picks its day.
type MonthlyPattern string

const (
	// MonthlyPatternDayOfMonth repeats on a fixed day number (the 15th).
	MonthlyPatternDayOfMonth MonthlyPattern = "dayOfMonth"
	// MonthlyPatternDayOfWeek repeats on the nth weekday (second Tuesday).
	MonthlyPatternDayOfWeek MonthlyPattern = "dayOfWeek"
)

// Valid reports whether p is a known monthly pattern.
func (p MonthlyPattern) Valid() bool {
	return p == MonthlyPatternDayOfMonth || p == MonthlyPatternDayOfWeek
}

// LastWeekOfMonth is the weekOfMonth value meaning "the last one".
const LastWeekOfMonth = -1

// BucketID names a relative due-date bucket.
type BucketID string

const (
	BucketOverdue  BucketID = "overdue"
	BucketToday    BucketID = "today"
	BucketTomorrow BucketID = "tomorrow"
	BucketThisWeek BucketID = "this-week"
	BucketNextWeek BucketID = "next-week"
	BucketLater    BucketID = "later"
	BucketNoDate   BucketID = "no-date"
)

// BucketOrder lists every bucket in display order.
var BucketOrder = []BucketID{
	BucketOverdue,
	BucketToday,
	BucketTomorrow,
	BucketThisWeek,
	BucketNextWeek,
	BucketLater,
	BucketNoDate,
}

// NewBucketID validates a bucket identifier.
func NewBucketID(s string) (BucketID, error) {
	for _, id := range BucketOrder {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown bucket %q", s)
}
