package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDate_RejectsImpossibleDays(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
	}{
		{"february 30", 2025, time.February, 30},
		{"february 29 in common year", 2025, time.February, 29},
		{"month 13", 2025, 13, 1},
		{"month 0", 2025, 0, 1},
		{"day 0", 2025, time.March, 0},
		{"april 31", 2025, time.April, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDate(tt.year, tt.month, tt.day)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}

	d, err := NewDate(2024, time.February, 29)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, MustDate(2025, time.June, 10), d)
	assert.Equal(t, time.Tuesday, d.Weekday())

	for _, bad := range []string{"", "2025-6-10", "2025-02-30", "10/06/2025", "2025-06-10T00:00:00Z"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDateFormat, bad)
	}
}

func TestDate_AddMonthsClampsToMonthEnd(t *testing.T) {
	assert.Equal(t, MustDate(2025, time.February, 28), MustDate(2025, time.January, 31).AddMonths(1))
	assert.Equal(t, MustDate(2024, time.February, 29), MustDate(2024, time.January, 31).AddMonths(1))
	assert.Equal(t, MustDate(2026, time.January, 15), MustDate(2025, time.December, 15).AddMonths(1))
	assert.Equal(t, MustDate(2024, time.November, 30), MustDate(2025, time.January, 30).AddMonths(-2))
	assert.Equal(t, MustDate(2025, time.February, 28), MustDate(2024, time.February, 29).AddYears(1))
}

func TestDate_WeekBoundaries(t *testing.T) {
	tue := MustDate(2025, time.June, 10)
	assert.Equal(t, MustDate(2025, time.June, 9), tue.StartOfWeek())
	assert.Equal(t, MustDate(2025, time.June, 15), tue.EndOfWeek())

	sun := MustDate(2025, time.June, 15)
	assert.Equal(t, MustDate(2025, time.June, 9), sun.StartOfWeek())
	assert.Equal(t, sun, sun.EndOfWeek())

	mon := MustDate(2025, time.June, 16)
	assert.Equal(t, mon, mon.StartOfWeek())
}

func TestDate_CompareAndDaysUntil(t *testing.T) {
	a := MustDate(2025, time.March, 1)
	b := MustDate(2025, time.March, 31)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, 30, a.DaysUntil(b))
	assert.Equal(t, -30, b.DaysUntil(a))
}

func TestDateOf_UsesWallClockOfLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	instant := time.Date(2025, time.June, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, MustDate(2025, time.June, 10), DateOf(instant))
	assert.Equal(t, MustDate(2025, time.June, 11), DateOf(instant.In(tokyo)))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Due Date `json:"due"`
	}

	out, err := json.Marshal(wrapper{Due: MustDate(2025, time.January, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2025-01-05"}`, string(out))

	var in wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-12-31"}`), &in))
	assert.Equal(t, MustDate(2024, time.December, 31), in.Due)

	assert.Error(t, json.Unmarshal([]byte(`{"due":"2024-13-01"}`), &in))
}
