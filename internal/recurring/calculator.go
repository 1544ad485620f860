package recurring

import (
	"slices"
	"time"

	"github.com/rezkam/central/internal/domain"
)

// DailyCalculator generates a date every Interval days from the anchor.
type DailyCalculator struct{}

func (c *DailyCalculator) NextOccurrence(after, anchor domain.Date, cfg domain.RecurringConfig) (domain.Date, bool) {
	step := cfg.Interval
	if step < 1 {
		return domain.Date{}, false
	}
	if after.Before(anchor) {
		return anchor, true
	}
	n := anchor.DaysUntil(after)/step + 1
	return anchor.AddDays(n * step), true
}

func (c *DailyCalculator) CountThrough(d, anchor domain.Date, cfg domain.RecurringConfig) int {
	if cfg.Interval < 1 || d.Before(anchor) {
		return 0
	}
	return anchor.DaysUntil(d)/cfg.Interval + 1
}

// WeeklyCalculator generates dates on the configured weekdays of every
// Interval-th week (times weeksPerInterval for biweekly). Weeks start on
// Monday and are counted from the anchor's week.
type WeeklyCalculator struct {
	weeksPerInterval int
}

func (c *WeeklyCalculator) NextOccurrence(after, anchor domain.Date, cfg domain.RecurringConfig) (domain.Date, bool) {
	step := cfg.Interval * c.weeksPerInterval
	if step < 1 || len(cfg.DaysOfWeek) == 0 {
		return domain.Date{}, false
	}

	candidate := after.AddDays(1)
	if candidate.Before(anchor) {
		candidate = anchor
	}
	anchorWeek := anchor.StartOfWeek()

	// Skip whole inactive weeks instead of walking them day by day.
	weeks := anchorWeek.DaysUntil(candidate.StartOfWeek()) / 7
	if rem := weeks % step; rem != 0 {
		candidate = anchorWeek.AddDays((weeks - rem + step) * 7)
	}

	// At most one active week plus the jump to the next one.
	for range 7 * (step + 1) {
		weeks = anchorWeek.DaysUntil(candidate.StartOfWeek()) / 7
		if weeks%step == 0 && slices.Contains(cfg.DaysOfWeek, candidate.Weekday()) {
			return candidate, true
		}
		candidate = candidate.AddDays(1)
	}
	return domain.Date{}, false
}

func (c *WeeklyCalculator) CountThrough(d, anchor domain.Date, cfg domain.RecurringConfig) int {
	step := cfg.Interval * c.weeksPerInterval
	if step < 1 || d.Before(anchor) {
		return 0
	}

	// Days are ranked by their offset from Monday.
	var selected [7]bool
	for _, wd := range cfg.DaysOfWeek {
		selected[weekOffset(wd)] = true
	}
	upTo := func(offset int) int {
		n := 0
		for i := 0; i <= offset; i++ {
			if selected[i] {
				n++
			}
		}
		return n
	}

	weeks := anchor.StartOfWeek().DaysUntil(d.StartOfWeek()) / 7
	count := (weeks+step-1)/step*upTo(6) - upTo(weekOffset(anchor.Weekday())-1)
	if weeks%step == 0 {
		count += upTo(weekOffset(d.Weekday()))
	}
	return count
}

func weekOffset(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// MonthlyCalculator generates one date every Interval months (times
// monthsPerInterval for quarterly), either on a day number clamped to the
// month's length or on the nth weekday of the month.
type MonthlyCalculator struct {
	monthsPerInterval int
}

func (c *MonthlyCalculator) NextOccurrence(after, anchor domain.Date, cfg domain.RecurringConfig) (domain.Date, bool) {
	step := cfg.Interval * c.monthsPerInterval
	if step < 1 {
		return domain.Date{}, false
	}

	from := after
	if from.Before(anchor) {
		from = anchor.AddDays(-1)
	}

	// First period whose month is not before `from`'s month.
	elapsed := monthsBetween(anchor, from)
	k := max(0, elapsed/step)

	// A period's date can fall before `from` inside the same month, so the
	// answer is at most two periods away.
	for range 3 {
		d := c.dateInPeriod(anchor, k*step, cfg)
		if d.After(from) && !d.Before(anchor) {
			return d, true
		}
		k++
	}
	return domain.Date{}, false
}

func (c *MonthlyCalculator) CountThrough(d, anchor domain.Date, cfg domain.RecurringConfig) int {
	step := cfg.Interval * c.monthsPerInterval
	if step < 1 || d.Before(anchor) {
		return 0
	}
	last := monthsBetween(anchor, d) / step
	count := last + 1
	if c.dateInPeriod(anchor, 0, cfg).Before(anchor) {
		count--
	}
	if c.dateInPeriod(anchor, last*step, cfg).After(d) {
		count--
	}
	return count
}

func (c *MonthlyCalculator) dateInPeriod(anchor domain.Date, monthsAhead int, cfg domain.RecurringConfig) domain.Date {
	first := domain.MustDate(anchor.Year(), anchor.Month(), 1).AddMonths(monthsAhead)
	if cfg.UsesNthWeekday() {
		return NthWeekday(first.Year(), first.Month(), *cfg.WeekOfMonth, *cfg.MonthlyDayOfWeek)
	}
	day := anchor.Day()
	if cfg.DayOfMonth != nil {
		day = *cfg.DayOfMonth
	}
	return domain.MustDate(first.Year(), first.Month(), min(day, domain.DaysIn(first.Year(), first.Month())))
}

// YearlyCalculator generates the anchor's month and day every Interval
// years. February 29 falls back to February 28 in common years.
type YearlyCalculator struct{}

func (c *YearlyCalculator) NextOccurrence(after, anchor domain.Date, cfg domain.RecurringConfig) (domain.Date, bool) {
	step := cfg.Interval
	if step < 1 {
		return domain.Date{}, false
	}
	if after.Before(anchor) {
		return anchor, true
	}
	k := max(0, (after.Year()-anchor.Year())/step)
	for range 3 {
		d := anchor.AddYears(k * step)
		if d.After(after) {
			return d, true
		}
		k++
	}
	return domain.Date{}, false
}

func (c *YearlyCalculator) CountThrough(d, anchor domain.Date, cfg domain.RecurringConfig) int {
	step := cfg.Interval
	if step < 1 || d.Before(anchor) {
		return 0
	}
	k := (d.Year() - anchor.Year()) / step
	for k >= 0 && anchor.AddYears(k*step).After(d) {
		k--
	}
	return k + 1
}

// NthWeekday returns the nth wd of the month; n == -1 selects the last one.
// n must be 1..4 or -1, which always exist.
func NthWeekday(year int, month time.Month, n int, wd time.Weekday) domain.Date {
	if n == domain.LastWeekOfMonth {
		last := domain.MustDate(year, month, domain.DaysIn(year, month))
		back := (int(last.Weekday()) - int(wd) + 7) % 7
		return last.AddDays(-back)
	}
	first := domain.MustDate(year, month, 1)
	ahead := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDays(ahead + 7*(n-1))
}

// monthsBetween counts whole calendar months from a's month to b's month.
func monthsBetween(a, b domain.Date) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
