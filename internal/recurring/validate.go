package recurring

import (
		"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rezkam/central/internal/domain"
)

// Limits on recurrence fields.
const (
	MinInterval            = 1
	MaxInterval            = 99
	MinDayOfMonth          = 1
	MaxDayOfMonth          = 31
	MinEndAfterOccurrences = 1
	MaxEndAfterOccurrences = 999
)

// ErrMalformedConfig is returned by DecodeRaw when the input is not JSON.
var ErrMalformedConfig = errors.New("malformed recurrence configuration")

// Raw is a recurrence configuration as submitted by a client, before
// validation. Every field is optional at this level.
type Raw struct {
	Frequency           *string `json:"frequency"`
	Interval            *int    `json:"interval"`
	DaysOfWeek          []int   `json:"daysOfWeek"`
	DayOfMonth          *int    `json:"dayOfMonth"`
	MonthlyPattern      *string `json:"monthlyPattern"`
	WeekOfMonth         *int    `json:"weekOfMonth"`
	MonthlyDayOfWeek    *int    `json:"monthlyDayOfWeek"`
	EndDate             *string `json:"endDate"`
	EndAfterOccurrences *int    `json:"endAfterOccurrences"`
}

// RawFromConfig converts a validated configuration back to its raw form.
// Validate(RawFromConfig(c)) returns c.
func RawFromConfig(c domain.RecurringConfig) Raw {
	freq := string(c.Frequency)
	interval := c.Interval
	raw := Raw{
		Frequency:           &freq,
		Interval:            &interval,
		DayOfMonth:          c.DayOfMonth,
		WeekOfMonth:         c.WeekOfMonth,
		EndAfterOccurrences: c.EndAfterOccurrences,
	}
	for _, wd := range c.DaysOfWeek {
		raw.DaysOfWeek = append(raw.DaysOfWeek, int(wd))
	}
	if c.MonthlyPattern != nil {
		p := string(*c.MonthlyPattern)
		raw.MonthlyPattern = &p
	}
	if c.MonthlyDayOfWeek != nil {
		wd := int(*c.MonthlyDayOfWeek)
		raw.MonthlyDayOfWeek = &wd
	}
	if c.EndDate != nil {
		s := c.EndDate.String()
		raw.EndDate = &s
	}
	return raw
}

// DecodeRaw decodes a JSON recurrence configuration field by field.
// Fields holding a value of the wrong JSON type are reported with code
// invalid_type, together with every violation Validate finds in the rest of
// the document, as one *domain.ValidationError. Input that is not a JSON
// object wraps ErrMalformedConfig. Without type errors the raw value is
// returned for the caller to validate.
func DecodeRaw(data []byte) (Raw, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Raw{}, fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}

	var raw Raw
	targets := []struct {
		field string
		dst   any
	}{
		{"frequency", &raw.Frequency},
		{"interval", &raw.Interval},
		{"daysOfWeek", &raw.DaysOfWeek},
		{"dayOfMonth", &raw.DayOfMonth},
		{"monthlyPattern", &raw.MonthlyPattern},
		{"weekOfMonth", &raw.WeekOfMonth},
		{"monthlyDayOfWeek", &raw.MonthlyDayOfWeek},
		{"endDate", &raw.EndDate},
		{"endAfterOccurrences", &raw.EndAfterOccurrences},
	}

	mistyped := map[string]string{}
	for _, t := range targets {
		value, ok := doc[t.field]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, t.dst); err != nil {
			mistyped[t.field] = typeMessage(err)
			// A partial decode must not leak into validation.
			clearTarget(t.dst)
		}
	}
	if len(mistyped) == 0 {
		return raw, nil
	}

	_, verr := validate(raw, mistyped)
	return Raw{}, verr
}

func typeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
	}
	return err.Error()
}

func clearTarget(dst any) {
	switch p := dst.(type) {
	case **string:
		*p = nil
	case **int:
		*p = nil
	case *[]int:
		*p = nil
	}
}

// Validate checks a raw configuration and returns the validated config.
//
// Field checks run first, in field order, followed by the cross-field
// invariants:
//  1. weekly and biweekly need at least one day of week
//  2. monthlyPattern "dayOfWeek" needs weekOfMonth and monthlyDayOfWeek
//  3. endDate and endAfterOccurrences are mutually exclusive
//
// Every violation is collected. On failure the returned config is the zero
// value and the error is a *domain.ValidationError. No defaults are filled
// in: absent optional fields stay nil.
func Validate(raw Raw) (domain.RecurringConfig, error) {
	return validate(raw, nil)
}

// validate runs the checks of Validate. Fields named in mistyped carry an
// invalid_type violation in place of their own checks and count as present
// for the cross-field invariants.
func validate(raw Raw, mistyped map[string]string) (domain.RecurringConfig, error) {
	var v violations
	present := func(field string, set bool) bool {
		_, bad := mistyped[field]
		return set || bad
	}
	checkType := func(field string) bool {
		msg, bad := mistyped[field]
		if bad {
			v.add(field, domain.CodeInvalidType, msg)
		}
		return !bad
	}

	var freq domain.Frequency
	switch {
	case !checkType("frequency"):
	case raw.Frequency == nil:
		v.add("frequency", domain.CodeRequired, "frequency is required")
	case !domain.Frequency(*raw.Frequency).Valid():
		v.add("frequency", domain.CodeUnknownValue, fmt.Sprintf("unknown frequency %q", *raw.Frequency))
	default:
		freq = domain.Frequency(*raw.Frequency)
	}

	switch {
	case !checkType("interval"):
	case raw.Interval == nil:
		v.add("interval", domain.CodeRequired, "interval is required")
	case *raw.Interval < MinInterval || *raw.Interval > MaxInterval:
		v.add("interval", domain.CodeOutOfRange, fmt.Sprintf("interval must be between %d and %d", MinInterval, MaxInterval))
	}

	checkType("daysOfWeek")
	for i, d := range raw.DaysOfWeek {
		if !validWeekday(d) {
			v.add(fmt.Sprintf("daysOfWeek[%d]", i), domain.CodeOutOfRange, "day of week must be between 0 (Sunday) and 6 (Saturday)")
		}
	}

	if checkType("dayOfMonth") && raw.DayOfMonth != nil && (*raw.DayOfMonth < MinDayOfMonth || *raw.DayOfMonth > MaxDayOfMonth) {
		v.add("dayOfMonth", domain.CodeOutOfRange, fmt.Sprintf("day of month must be between %d and %d", MinDayOfMonth, MaxDayOfMonth))
	}

	if checkType("monthlyPattern") && raw.MonthlyPattern != nil && !domain.MonthlyPattern(*raw.MonthlyPattern).Valid() {
		v.add("monthlyPattern", domain.CodeUnknownValue, fmt.Sprintf("unknown monthly pattern %q", *raw.MonthlyPattern))
	}

	if checkType("weekOfMonth") && raw.WeekOfMonth != nil && !validWeekOfMonth(*raw.WeekOfMonth) {
		v.add("weekOfMonth", domain.CodeOutOfRange, "week of month must be 1, 2, 3, 4 or -1 (last)")
	}

	if checkType("monthlyDayOfWeek") && raw.MonthlyDayOfWeek != nil && !validWeekday(*raw.MonthlyDayOfWeek) {
		v.add("monthlyDayOfWeek", domain.CodeOutOfRange, "day of week must be between 0 (Sunday) and 6 (Saturday)")
	}

	var endDate *domain.Date
	if checkType("endDate") && raw.EndDate != nil {
		d, err := domain.ParseDate(*raw.EndDate)
		if err != nil {
			v.add("endDate", domain.CodeInvalidDate, "end date must be a valid YYYY-MM-DD date")
		} else {
			endDate = &d
		}
	}

	if checkType("endAfterOccurrences") && raw.EndAfterOccurrences != nil &&
		(*raw.EndAfterOccurrences < MinEndAfterOccurrences || *raw.EndAfterOccurrences > MaxEndAfterOccurrences) {
		v.add("endAfterOccurrences", domain.CodeOutOfRange,
			fmt.Sprintf("occurrence count must be between %d and %d", MinEndAfterOccurrences, MaxEndAfterOccurrences))
	}

	if freq.RequiresDaysOfWeek() && !present("daysOfWeek", len(raw.DaysOfWeek) > 0) {
		v.add("daysOfWeek", domain.CodeDaysOfWeekRequired, fmt.Sprintf("%s recurrence needs at least one day of week", freq))
	}

	if raw.MonthlyPattern != nil && domain.MonthlyPattern(*raw.MonthlyPattern) == domain.MonthlyPatternDayOfWeek &&
		(!present("weekOfMonth", raw.WeekOfMonth != nil) || !present("monthlyDayOfWeek", raw.MonthlyDayOfWeek != nil)) {
		v.add("monthlyPattern", domain.CodeMonthlyDayOfWeekIncomplete, "dayOfWeek pattern needs both weekOfMonth and monthlyDayOfWeek")
	}

	if present("endDate", raw.EndDate != nil) && present("endAfterOccurrences", raw.EndAfterOccurrences != nil) {
		v.add("endDate", domain.CodeEndConditionsExclusive, "set either endDate or endAfterOccurrences, not both")
	}

	if err := v.err(); err != nil {
		return domain.RecurringConfig{}, err
	}

	cfg := domain.RecurringConfig{
		Frequency:           freq,
		Interval:            *raw.Interval,
		DayOfMonth:          copyInt(raw.DayOfMonth),
		WeekOfMonth:         copyInt(raw.WeekOfMonth),
		EndDate:             endDate,
		EndAfterOccurrences: copyInt(raw.EndAfterOccurrences),
	}
	if len(raw.DaysOfWeek) > 0 {
		cfg.DaysOfWeek = make([]time.Weekday, len(raw.DaysOfWeek))
		for i, d := range raw.DaysOfWeek {
			cfg.DaysOfWeek[i] = time.Weekday(d)
		}
	}
	if raw.MonthlyPattern != nil {
		p := domain.MonthlyPattern(*raw.MonthlyPattern)
		cfg.MonthlyPattern = &p
	}
	if raw.MonthlyDayOfWeek != nil {
		wd := time.Weekday(*raw.MonthlyDayOfWeek)
		cfg.MonthlyDayOfWeek = &wd
	}
	return cfg, nil
}

type violations []domain.FieldViolation

func (v *violations) add(field, code, msg string) {
	*v = append(*v, domain.FieldViolation{Field: field, Code: code, Message: msg})
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return &domain.ValidationError{Violations: slices.Clone(v)}
}

func validWeekday(d int) bool {
	return d >= int(time.Sunday) && d <= int(time.Saturday)
}

func validWeekOfMonth(w int) bool {
	return (w >= 1 && w <= 4) || w == domain.LastWeekOfMonth
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
