package dateparse

import (
	"time"

	"github.com/rezkam/central/internal/domain"
)

// Suggestion keys, stable across releases so clients can bind shortcuts.
const (
	KeyToday      = "today"
	KeyTomorrow   = "tomorrow"
	KeyNextMonday = "next_monday"
	KeyNextWeek   = "next_week"
	KeyTwoWeeks   = "in_two_weeks"
	KeyNextMonth  = "next_month"
)

// Suggestions returns the quick-pick menu for a due date input, in display
// order: today, tomorrow, next Monday, one week out, two weeks out, one
// month out.
//
// With ignoreWeekends, entries landing on Saturday or Sunday move to the
// following Monday, and entries that collapse onto the same date are
// dropped keeping the first.
func Suggestions(today domain.Date, ignoreWeekends bool) []domain.DateSuggestion {
	menu := []domain.DateSuggestion{
		{Key: KeyToday, Label: "Today", Date: today},
		{Key: KeyTomorrow, Label: "Tomorrow", Date: today.AddDays(1)},
		{Key: KeyNextMonday, Label: "Next Monday", Date: NextWeekday(today, time.Monday)},
		{Key: KeyNextWeek, Label: "Next week", Date: today.AddDays(7)},
		{Key: KeyTwoWeeks, Label: "In 2 weeks", Date: today.AddDays(14)},
		{Key: KeyNextMonth, Label: "Next month", Date: today.AddMonths(1)},
	}

	if ignoreWeekends {
		seen := make(map[domain.Date]struct{}, len(menu))
		kept := menu[:0]
		for _, s := range menu {
			s.Date = SkipWeekend(s.Date)
			if _, dup := seen[s.Date]; dup {
				continue
			}
			seen[s.Date] = struct{}{}
			kept = append(kept, s)
		}
		menu = kept
	}

	for i := range menu {
		menu[i].Detail = ShortLabel(menu[i].Date)
	}
	return menu
}

// SkipWeekend moves Saturday and Sunday forward to the next Monday and
// returns any other date unchanged.
func SkipWeekend(d domain.Date) domain.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(2)
	case time.Sunday:
		return d.AddDays(1)
	default:
		return d
	}
}
