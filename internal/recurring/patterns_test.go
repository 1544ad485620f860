package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/ptr"
)

func date(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dates(ss ...string) []domain.Date {
	out := make([]domain.Date, len(ss))
	for i, s := range ss {
		out[i] = date(s)
	}
	return out
}

// series walks a calculator from the anchor and returns the first n dates.
func series(t *testing.T, anchor domain.Date, cfg domain.RecurringConfig, n int) []domain.Date {
	t.Helper()
	calc := GetCalculator(cfg.Frequency)
	require.NotNil(t, calc)

	var out []domain.Date
	prev := anchor.AddDays(-1)
	for range n {
		next, ok := calc.NextOccurrence(prev, anchor, cfg)
		require.True(t, ok)
		require.True(t, next.After(prev), "calculator went backwards: %s after %s", next, prev)
		out = append(out, next)
		prev = next
	}
	return out
}

func TestDailyCalculator(t *testing.T) {
	cfg := domain.RecurringConfig{Frequency: domain.FrequencyDaily, Interval: 3}
	assert.Equal(t, dates("2025-06-10", "2025-06-13", "2025-06-16", "2025-06-19"),
		series(t, date("2025-06-10"), cfg, 4))

	t.Run("jumps directly from a late date", func(t *testing.T) {
		calc := &DailyCalculator{}
		next, ok := calc.NextOccurrence(date("2025-07-01"), date("2025-06-10"), cfg)
		require.True(t, ok)
		// 2025-06-10 + 8*3 days
		assert.Equal(t, date("2025-07-04"), next)
	})

	t.Run("month and year boundary", func(t *testing.T) {
		cfg := domain.RecurringConfig{Frequency: domain.FrequencyDaily, Interval: 1}
		assert.Equal(t, dates("2024-12-31", "2025-01-01"), series(t, date("2024-12-31"), cfg, 2))
	})
}

func TestWeeklyCalculator(t *testing.T) {
	anchor := date("2025-06-10") // Tuesday

	t.Run("every week", func(t *testing.T) {
		cfg := domain.RecurringConfig{
			Frequency:  domain.FrequencyWeekly,
			Interval:   1,
			DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		}
		assert.Equal(t, dates("2025-06-11", "2025-06-13", "2025-06-16", "2025-06-18"),
			series(t, anchor, cfg, 4))
	})

	t.Run("every other week counts from the anchor week", func(t *testing.T) {
		cfg := domain.RecurringConfig{
			Frequency:  domain.FrequencyWeekly,
			Interval:   2,
			DaysOfWeek: []time.Weekday{time.Monday, time.Thursday},
		}
		// Monday 06-09 precedes the anchor; the next active week starts 06-23.
		assert.Equal(t, dates("2025-06-12", "2025-06-23", "2025-06-26", "2025-07-07"),
			series(t, anchor, cfg, 4))
	})

	t.Run("biweekly equals weekly with interval two", func(t *testing.T) {
		days := []time.Weekday{time.Sunday, time.Thursday}
		bi := domain.RecurringConfig{Frequency: domain.FrequencyBiweekly, Interval: 1, DaysOfWeek: days}
		wk := domain.RecurringConfig{Frequency: domain.FrequencyWeekly, Interval: 2, DaysOfWeek: days}
		assert.Equal(t, series(t, anchor, wk, 8), series(t, anchor, bi, 8))
	})

	t.Run("sunday closes the monday week", func(t *testing.T) {
		cfg := domain.RecurringConfig{
			Frequency:  domain.FrequencyWeekly,
			Interval:   2,
			DaysOfWeek: []time.Weekday{time.Sunday},
		}
		assert.Equal(t, dates("2025-06-15", "2025-06-29"), series(t, anchor, cfg, 2))
	})

	t.Run("no days yields nothing", func(t *testing.T) {
		calc := &WeeklyCalculator{weeksPerInterval: 1}
		_, ok := calc.NextOccurrence(anchor, anchor, domain.RecurringConfig{Frequency: domain.FrequencyWeekly, Interval: 1})
		assert.False(t, ok)
	})
}

func TestMonthlyCalculator(t *testing.T) {
	t.Run("defaults to the anchor day and clamps short months", func(t *testing.T) {
		cfg := domain.RecurringConfig{Frequency: domain.FrequencyMonthly, Interval: 1}
		assert.Equal(t, dates("2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"),
			series(t, date("2025-01-31"), cfg, 4))
	})

	t.Run("explicit day before the anchor day starts next month", func(t *testing.T) {
		cfg := domain.RecurringConfig{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfMonth: ptr.To(15)}
		assert.Equal(t, dates("2025-02-15", "2025-03-15"), series(t, date("2025-01-31"), cfg, 2))
	})

	t.Run("second tuesday", func(t *testing.T) {
		p := domain.MonthlyPatternDayOfWeek
		wd := time.Tuesday
		cfg := domain.RecurringConfig{
			Frequency:        domain.FrequencyMonthly,
			Interval:         1,
			MonthlyPattern:   &p,
			WeekOfMonth:      ptr.To(2),
			MonthlyDayOfWeek: &wd,
		}
		assert.Equal(t, dates("2025-06-10", "2025-07-08", "2025-08-12"), series(t, date("2025-06-01"), cfg, 3))
	})

	t.Run("last friday", func(t *testing.T) {
		p := domain.MonthlyPatternDayOfWeek
		wd := time.Friday
		cfg := domain.RecurringConfig{
			Frequency:        domain.FrequencyMonthly,
			Interval:         1,
			MonthlyPattern:   &p,
			WeekOfMonth:      ptr.To(domain.LastWeekOfMonth),
			MonthlyDayOfWeek: &wd,
		}
		assert.Equal(t, dates("2025-06-27", "2025-07-25", "2025-08-29"), series(t, date("2025-06-01"), cfg, 3))
	})

	t.Run("interval skips months", func(t *testing.T) {
		cfg := domain.RecurringConfig{Frequency: domain.FrequencyMonthly, Interval: 2}
		assert.Equal(t, dates("2025-11-05", "2026-01-05", "2026-03-05"), series(t, date("2025-11-05"), cfg, 3))
	})
}

func TestQuarterlyCalculator(t *testing.T) {
	cfg := domain.RecurringConfig{Frequency: domain.FrequencyQuarterly, Interval: 1}
	assert.Equal(t, dates("2025-01-15", "2025-04-15", "2025-07-15", "2025-10-15", "2026-01-15"),
		series(t, date("2025-01-15"), cfg, 5))
}

func TestYearlyCalculator(t *testing.T) {
	t.Run("leap day falls back in common years", func(t *testing.T) {
		cfg := domain.RecurringConfig{Frequency: domain.FrequencyYearly, Interval: 1}
		assert.Equal(t, dates("2024-02-29", "2025-02-28", "2026-02-28", "2027-02-28", "2028-02-29"),
			series(t, date("2024-02-29"), cfg, 5))
	})

	t.Run("interval", func(t *testing.T) {
		cfg := domain.RecurringConfig{Frequency: domain.FrequencyYearly, Interval: 2}
		assert.Equal(t, dates("2025-03-15", "2027-03-15", "2029-03-15"), series(t, date("2025-03-15"), cfg, 3))
	})
}

func TestCalculators_RejectZeroInterval(t *testing.T) {
	anchor := date("2025-01-01")
	for _, f := range []domain.Frequency{
		domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyBiweekly,
		domain.FrequencyMonthly, domain.FrequencyQuarterly, domain.FrequencyYearly,
	} {
		t.Run(string(f), func(t *testing.T) {
			cfg := domain.RecurringConfig{Frequency: f, Interval: 0, DaysOfWeek: []time.Weekday{time.Monday}}
			_, ok := GetCalculator(f).NextOccurrence(anchor, anchor, cfg)
			assert.False(t, ok)
		})
	}
}

func TestNthWeekday(t *testing.T) {
	tests := []struct {
		n    int
		wd   time.Weekday
		want string
	}{
		{1, time.Monday, "2025-09-01"},
		{1, time.Sunday, "2025-09-07"},
		{4, time.Tuesday, "2025-09-23"},
		{domain.LastWeekOfMonth, time.Tuesday, "2025-09-30"},
		{domain.LastWeekOfMonth, time.Wednesday, "2025-09-24"},
	}
	for _, tt := range tests {
		assert.Equal(t, date(tt.want), NthWeekday(2025, time.September, tt.n, tt.wd), "n=%d wd=%s", tt.n, tt.wd)
	}
}

func TestGetCalculator(t *testing.T) {
	tests := []struct {
		freq    domain.Frequency
		wantNil bool
	}{
		{domain.FrequencyDaily, false},
		{domain.FrequencyWeekly, false},
		{domain.FrequencyBiweekly, false},
		{domain.FrequencyMonthly, false},
		{domain.FrequencyQuarterly, false},
		{domain.FrequencyYearly, false},
		{"hourly", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			calc := GetCalculator(tt.freq)
			if tt.wantNil {
				assert.Nil(t, calc)
			} else {
				assert.NotNil(t, calc)
			}
		})
	}
}
