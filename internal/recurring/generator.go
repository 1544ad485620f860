package recurring

import (
	"errors"
	"fmt"

	"github.com/rezkam/central/internal/domain"
)

// MaxIterations bounds how many series dates are walked for a single
// request.
const MaxIterations = 100_000

// ErrIterationLimit is returned when a window holds more series dates than
// MaxIterations.
var ErrIterationLimit = errors.New("recurrence series too long to expand")

// Window selects which part of a series to expand.
type Window struct {
	From  domain.Date // inclusive
	Until domain.Date // inclusive
	Limit int         // maximum occurrences returned; <= 0 means no limit
}

// Occurrences expands the series anchored at anchor and returns the dates
// inside w, in order.
//
// The series starts at the first date on or after the anchor that matches
// cfg, ends after cfg.EndAfterOccurrences dates or on cfg.EndDate
// (inclusive), and is otherwise unbounded. Indexes are 1-based positions in
// the whole series, so they stay stable whatever window is requested.
func Occurrences(anchor domain.Date, cfg domain.RecurringConfig, w Window) ([]domain.Occurrence, error) {
	if w.Until.Before(w.From) {
		return nil, fmt.Errorf("%w: until %s is before from %s", domain.ErrInvalidRange, w.Until, w.From)
	}

	calc := GetCalculator(cfg.Frequency)
	if calc == nil {
		return nil, fmt.Errorf("%w: unknown frequency %q", domain.ErrInvalidRecurrence, cfg.Frequency)
	}

	out := []domain.Occurrence{}
	prev := anchor.AddDays(-1)
	index := 0

	// Start at the window when the skipped part of the series can be counted.
	if counter, ok := calc.(SeriesCounter); ok && w.From.After(anchor) {
		prev = w.From.AddDays(-1)
		index = counter.CountThrough(prev, anchor, cfg)
		if cfg.EndAfterOccurrences != nil && index >= *cfg.EndAfterOccurrences {
			return out, nil
		}
	}

	for range MaxIterations {
		next, ok := calc.NextOccurrence(prev, anchor, cfg)
		if !ok {
			return out, nil
		}
		if cfg.EndDate != nil && next.After(*cfg.EndDate) {
			return out, nil
		}
		index++
		if cfg.EndAfterOccurrences != nil && index > *cfg.EndAfterOccurrences {
			return out, nil
		}
		if next.After(w.Until) {
			return out, nil
		}
		if !next.Before(w.From) {
			out = append(out, domain.Occurrence{Date: next, Index: index})
			if w.Limit > 0 && len(out) >= w.Limit {
				return out, nil
			}
		}
		prev = next
	}

	return out, fmt.Errorf("%w: stopped after %d dates", ErrIterationLimit, MaxIterations)
}

// NextAfter returns the first occurrence of the series strictly after the
// given date, honouring the end conditions. The second result is false when
// the series has ended.
func NextAfter(anchor domain.Date, cfg domain.RecurringConfig, after domain.Date) (domain.Occurrence, bool, error) {
	occ, err := Occurrences(anchor, cfg, Window{From: after.AddDays(1), Until: domain.MustDate(9999, 12, 31), Limit: 1})
	if err != nil {
		return domain.Occurrence{}, false, err
	}
	if len(occ) == 0 {
		return domain.Occurrence{}, false, nil
	}
	return occ[0], true, nil
}
