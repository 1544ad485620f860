package domain

import "errors"

// Domain errors returned by the date, recurrence and repository layers.

var (
	// ErrInvalidDate indicates a year/month/day triple that does not exist.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrInvalidDateFormat indicates a date string that is not "YYYY-MM-DD".
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrInvalidRange indicates a from/until window that is empty, reversed
	// or wider than the configured maximum.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrTemplateIDRequired indicates a rule was submitted without a template.
	ErrTemplateIDRequired = errors.New("template id is required")

	// ErrStartDateRequired indicates a rule was submitted without an anchor date.
	ErrStartDateRequired = errors.New("start date is required")

	// ErrRuleNotFound indicates the requested recurrence rule does not exist.
	ErrRuleNotFound = errors.New("recurrence rule not found")

	// ErrRuleExists indicates a rule with the same ID is already stored.
	ErrRuleExists = errors.New("recurrence rule already exists")

	// ErrVersionConflict indicates the etag supplied by the client no longer
	// matches the stored version.
	ErrVersionConflict = errors.New("version conflict")
)
