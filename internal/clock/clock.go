// Package clock is the single place the service reads the wall clock.
//
// Everything "today"-relative takes a Clock (or a domain.Date derived from
// one) so that results are deterministic for a given input and instant.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/rezkam/central/internal/domain"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the operating system clock, normalized to UTC.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock frozen at an instant. It is safe for concurrent use and
// can be moved forward in tests.
type Fixed struct {
	mu sync.RWMutex
	at time.Time
}

// NewFixed returns a Clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{at: t}
}

// OnDate returns a Clock frozen at noon UTC of d.
func OnDate(d domain.Date) *Fixed {
	return NewFixed(d.Time().Add(12 * time.Hour))
}

// Now implements Clock.
func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.at
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.at = t
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.at = f.at.Add(d)
}

// Today returns the calendar date of c's current instant in loc.
// A nil loc means UTC.
func Today(c Clock, loc *time.Location) domain.Date {
	if loc == nil {
		loc = time.UTC
	}
	return domain.DateOf(c.Now().In(loc))
}

// LoadLocation resolves an IANA zone name; the empty string means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
