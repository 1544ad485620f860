package domain

import (
	"fmt"
	"time"
)

// RecurringRule is an aggregate root binding a validated recurrence
// configuration to a task template.
//
// Rules are authored alongside task templates:
//  1. The client submits a raw configuration and an anchor StartDate
//  2. recurring.Validate turns it into a RecurringConfig or reports every violation
//  3. The rule is persisted and later read back to expand future occurrences
//
// StartDate anchors the series: weekly intervals count from its week,
// monthly intervals from its month, and the default day-of-month is its day.
type RecurringRule struct {
	ID         string
	TemplateID string
	StartDate  Date
	Config     RecurringConfig

	CreatedAt time.Time
	UpdatedAt time.Time

	// Optimistic locking version for concurrent update protection
	Version int
}

// Etag returns the entity tag for this rule.
// The etag is based on the version number and is used for optimistic concurrency control.
func (r *RecurringRule) Etag() string {
	return fmt.Sprintf("%d", r.Version)
}

// UpdateRuleParams carries a full replacement of a rule's schedule.
type UpdateRuleParams struct {
	RuleID string

	// Etag for optimistic concurrency control.
	// Format: numeric string, e.g., "1", "2".
	// If provided and doesn't match current version, returns ErrVersionConflict.
	Etag *string

	StartDate *Date // nil keeps the stored anchor
	Config    RecurringConfig
	UpdatedAt time.Time
}

// Occurrence is one generated date of a rule's series.
type Occurrence struct {
	Date  Date `json:"date"`
	Index int  `json:"index"` // 1-based position in the whole series
}
