package domain

import "time"

// ParsedDate is the result of interpreting a free-text date expression.
// Produced fresh on each parse; it has no identity.
type ParsedDate struct {
	Date  Date   `json:"date"`
	Label string `json:"label"`
}

// DateSuggestion is one entry of the quick-pick menu shown next to a due
// date input.
type DateSuggestion struct {
	Key    string `json:"key"`    // Stable identifier, e.g. "next_monday"
	Label  string `json:"label"`  // Menu text, e.g. "Next Monday"
	Date   Date   `json:"date"`   // Resolved date
	Detail string `json:"detail"` // Short formatted date, e.g. "Mon, Jun 16"
}

// DateBucket describes a relative-time group on a board.
type DateBucket struct {
	ID    BucketID `json:"id"`
	Label string   `json:"label"`
	Color string   `json:"color"` // Hex color used by the board header
}

// Task is the minimal task shape a board view sends for grouping.
// DueDate is an ISO "YYYY-MM-DD" string or nil when the task has no date.
type Task struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	DueDate  *string  `json:"dueDate"`
	Position float64  `json:"position"`
	Tags     []string `json:"tags,omitempty"`
}

// Due returns the due date string, empty when absent.
func (t Task) Due() string {
	if t.DueDate == nil {
		return ""
	}
	return *t.DueDate
}

// SortPosition returns the manual ordering position within a bucket.
func (t Task) SortPosition() float64 {
	return t.Position
}

// RecurringConfig is a validated recurrence configuration.
//
// Optional fields are nil when absent; validation never fills defaults.
// Invariants (enforced by recurring.Validate):
//   - weekly and biweekly frequencies carry a non-empty DaysOfWeek
//   - MonthlyPattern == dayOfWeek carries WeekOfMonth and MonthlyDayOfWeek
//   - EndDate and EndAfterOccurrences are mutually exclusive
type RecurringConfig struct {
	Frequency           Frequency       `json:"frequency"`
	Interval            int             `json:"interval"`
	DaysOfWeek          []time.Weekday  `json:"daysOfWeek,omitempty"`
	DayOfMonth          *int            `json:"dayOfMonth,omitempty"`
	MonthlyPattern      *MonthlyPattern `json:"monthlyPattern,omitempty"`
	WeekOfMonth         *int            `json:"weekOfMonth,omitempty"`
	MonthlyDayOfWeek    *time.Weekday   `json:"monthlyDayOfWeek,omitempty"`
	EndDate             *Date           `json:"endDate,omitempty"`
	EndAfterOccurrences *int            `json:"endAfterOccurrences,omitempty"`
}

// UsesNthWeekday reports whether a monthly-style config resolves to the nth
// weekday of the month rather than a day number.
func (c RecurringConfig) UsesNthWeekday() bool {
	return c.MonthlyPattern != nil && *c.MonthlyPattern == MonthlyPatternDayOfWeek &&
		c.WeekOfMonth != nil && c.MonthlyDayOfWeek != nil
}
