package recurring

import (
	"github.com/rezkam/central/internal/domain"
)

// PatternCalculator finds the dates of a recurrence series.
type PatternCalculator interface {
	// NextOccurrence returns the first occurrence strictly after the given
	// date. Occurrences never precede the series anchor. Returns false when
	// the configuration cannot produce another date.
	NextOccurrence(after, anchor domain.Date, cfg domain.RecurringConfig) (domain.Date, bool)
}

// SeriesCounter is implemented by calculators that can count series dates
// without walking them.
type SeriesCounter interface {
	// CountThrough returns how many series dates fall on or before d.
	CountThrough(d, anchor domain.Date, cfg domain.RecurringConfig) int
}

// GetCalculator returns the appropriate calculator for the given frequency.
func GetCalculator(f domain.Frequency) PatternCalculator {
	switch f {
	case domain.FrequencyDaily:
		return &DailyCalculator{}
	case domain.FrequencyWeekly:
		return &WeeklyCalculator{weeksPerInterval: 1}
	case domain.FrequencyBiweekly:
		return &WeeklyCalculator{weeksPerInterval: 2}
	case domain.FrequencyMonthly:
		return &MonthlyCalculator{monthsPerInterval: 1}
	case domain.FrequencyQuarterly:
		return &MonthlyCalculator{monthsPerInterval: 3}
	case domain.FrequencyYearly:
		return &YearlyCalculator{}
	default:
		return nil
	}
}
