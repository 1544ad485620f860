package domain

import (
	"errors"
	"strings"
)

// ErrInvalidRecurrence is matched (via errors.Is) by every *ValidationError.
var ErrInvalidRecurrence = errors.New("invalid recurrence configuration")

// Violation codes reported for recurrence configurations.
const (
	CodeRequired                   = "required"
	CodeUnknownValue               = "unknown_value"
	CodeOutOfRange                 = "out_of_range"
	CodeInvalidDate                = "invalid_date"
	CodeInvalidType                = "invalid_type"
	CodeDaysOfWeekRequired         = "days_of_week_required"
	CodeMonthlyDayOfWeekIncomplete = "monthly_day_of_week_incomplete"
	CodeEndConditionsExclusive     = "end_conditions_exclusive"
)

// FieldViolation describes one failed check.
type FieldViolation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError lists every violation found in one input.
// The order is stable: per-field checks in field order, then cross-field
// invariants.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return ErrInvalidRecurrence.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalidRecurrence) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRecurrence
}

// Codes returns the violation codes in order.
func (e *ValidationError) Codes() []string {
	codes := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		codes[i] = v.Code
	}
	return codes
}
