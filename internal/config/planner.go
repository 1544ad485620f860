package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPlannerLimit is returned when a planner limit is not positive.
var ErrInvalidPlannerLimit = errors.New("planner limits must be positive")

// PlannerConfig holds date reasoning settings.
type PlannerConfig struct {
	// Timezone is the IANA zone in which "today" is evaluated.
	Timezone string `env:"CENTRAL_TIMEZONE" default:"UTC"`

	// MaxOccurrenceWindowDays caps the from..until span of one expansion.
	MaxOccurrenceWindowDays int `env:"CENTRAL_MAX_OCCURRENCE_WINDOW_DAYS" default:"366"`
	// MaxOccurrences caps the number of dates returned by one expansion.
	MaxOccurrences int `env:"CENTRAL_MAX_OCCURRENCES" default:"500"`
}

// Validate validates the planner configuration.
func (c *PlannerConfig) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid CENTRAL_TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.MaxOccurrenceWindowDays <= 0 || c.MaxOccurrences <= 0 {
		return ErrInvalidPlannerLimit
	}
	return nil
}
