// Package dateparse turns free-text due date expressions ("tomorrow",
// "next friday", "in 2 weeks", "jan 15", "1/15/2025") into calendar dates.
//
// All functions take "today" explicitly so results depend only on their
// arguments.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rezkam/central/internal/domain"
)

// Label layouts.
const (
	// ShortLayout labels dates whose year was inferred ("Fri, Jun 13").
	ShortLayout = "Mon, Jan 2"
	// LongLayout labels dates whose year was typed ("Jan 15, 2025").
	LongLayout = "Jan 2, 2006"
)

var (
	inDurationRe = regexp.MustCompile(`^in (\d{1,4}) (day|days|week|weeks|month|months)$`)
	monthDayRe   = regexp.MustCompile(`^([a-z]+)\.? (\d{1,2})(?:st|nd|rd|th)?$`)
	slashRe      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	slashYearRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"thurs":     time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

var months = map[string]time.Month{
	"january":   time.January,
	"jan":       time.January,
	"february":  time.February,
	"feb":       time.February,
	"march":     time.March,
	"mar":       time.March,
	"april":     time.April,
	"apr":       time.April,
	"may":       time.May,
	"june":      time.June,
	"jun":       time.June,
	"july":      time.July,
	"jul":       time.July,
	"august":    time.August,
	"aug":       time.August,
	"september": time.September,
	"sept":      time.September,
	"sep":       time.September,
	"october":   time.October,
	"oct":       time.October,
	"november":  time.November,
	"nov":       time.November,
	"december":  time.December,
	"dec":       time.December,
}

// Parse interprets input relative to today.
//
// Matching order:
//   - keywords: "today", "tomorrow"/"tmrw", "next week", "next month"
//   - "next <weekday>" and "this <weekday>"
//   - a bare weekday name
//   - "in N days|weeks|months"
//   - "<month> <day>", rolled to next year when already past
//   - "M/D", rolled the same way
//   - "M/D/YYYY"
//
// Weekday expressions always resolve to a day strictly after today, so
// "next monday" typed on a Monday means a week later.
// The second result is false when nothing matched or a numeric date does
// not exist on the calendar.
func Parse(input string, today domain.Date) (domain.ParsedDate, bool) {
	s := normalize(input)
	if s == "" {
		return domain.ParsedDate{}, false
	}

	switch s {
	case "today":
		return domain.ParsedDate{Date: today, Label: "Today"}, true
	case "tomorrow", "tmrw":
		return domain.ParsedDate{Date: today.AddDays(1), Label: "Tomorrow"}, true
	case "next week":
		return short(today.AddDays(7)), true
	case "next month":
		return short(today.AddMonths(1)), true
	}

	if rest, ok := cutAny(s, "next ", "this "); ok {
		if wd, ok := weekdays[rest]; ok {
			return short(NextWeekday(today, wd)), true
		}
	}

	if wd, ok := weekdays[s]; ok {
		return short(NextWeekday(today, wd)), true
	}

	if m := inDurationRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return domain.ParsedDate{}, false
		}
		switch {
		case strings.HasPrefix(m[2], "day"):
			return short(today.AddDays(n)), true
		case strings.HasPrefix(m[2], "week"):
			return short(today.AddDays(7 * n)), true
		default:
			return short(today.AddMonths(n)), true
		}
	}

	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		if month, ok := months[m[1]]; ok {
			day, _ := strconv.Atoi(m[2])
			d, ok := rollForward(today, month, day)
			if !ok {
				return domain.ParsedDate{}, false
			}
			return short(d), true
		}
	}

	if m := slashRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		d, ok := rollForward(today, time.Month(month), day)
		if !ok {
			return domain.ParsedDate{}, false
		}
		return short(d), true
	}

	if m := slashYearRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		d, err := domain.NewDate(year, time.Month(month), day)
		if err != nil {
			return domain.ParsedDate{}, false
		}
		return domain.ParsedDate{Date: d, Label: d.Format(LongLayout)}, true
	}

	return domain.ParsedDate{}, false
}

// NextWeekday returns the first date strictly after from that falls on wd.
func NextWeekday(from domain.Date, wd time.Weekday) domain.Date {
	ahead := (int(wd) - int(from.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return from.AddDays(ahead)
}

// ShortLabel formats a date the way inferred-year results are labelled.
func ShortLabel(d domain.Date) string {
	return d.Format(ShortLayout)
}

// rollForward builds month/day in today's year, moving to next year when
// that date is already in the past. Today itself does not roll.
func rollForward(today domain.Date, month time.Month, day int) (domain.Date, bool) {
	d, err := domain.NewDate(today.Year(), month, day)
	if err != nil {
		// Checked against today's year: "feb 29" only parses in leap years.
		return domain.Date{}, false
	}
	if d.Before(today) {
		next, err := domain.NewDate(today.Year()+1, month, day)
		if err != nil {
			return domain.Date{}, false
		}
		return next, true
	}
	return d, true
}

func short(d domain.Date) domain.ParsedDate {
	return domain.ParsedDate{Date: d, Label: ShortLabel(d)}
}

func normalize(input string) string {
	return spacesRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), " ")
}

func cutAny(s string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest, true
		}
	}
	return "", false
}
