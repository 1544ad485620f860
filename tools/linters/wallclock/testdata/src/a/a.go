package a

import (
	"time"
	stdtime "time"
)

func bad() {
	_ = time.Now() // want `time.Now reads the wall clock; use an injected clock.Clock`
}

func badUTC() {
	_ = time.Now().UTC() // want `time.Now reads the wall clock`
}

func badRenamed() {
	_ = stdtime.Now() // want `time.Now reads the wall clock`
}

func badSince(start time.Time) time.Duration {
	return time.Since(start) // want `time.Since reads the wall clock`
}

func badUntil(deadline time.Time) time.Duration {
	return time.Until(deadline) // want `time.Until reads the wall clock`
}

func methodsAreFine(a, b time.Time) bool {
	return a.Sub(b) > 0 && a.Before(b)
}

func constructorsAreFine() time.Time {
	return time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
}

type fakeClock struct{}

func (fakeClock) Now() time.Time { return time.Time{} }

func otherNowIsFine() {
	_ = fakeClock{}.Now()
}

func nolintGeneral() {
	//nolint
	_ = time.Now()
}

func nolintSpecific() {
	_ = time.Now() //nolint:wallclock
}

func nolintList() {
	_ = time.Now() //nolint:errcheck,wallclock // benchmark timing
}

func nolintOtherLinter() {
	_ = time.Now() //nolint:otherlinter // want `time.Now reads the wall clock`
}
