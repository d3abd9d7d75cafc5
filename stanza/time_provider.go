package stanza

import "time"

// TimeProvider supplies timers to the request tracker. Tests inject a fake
// to fire timeouts deterministically.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time
	// After returns a channel that fires once d has elapsed, and a stop
	// function that releases the timer early.
	After(d time.Duration) (<-chan time.Time, func())
}

// RealTimeProvider implements TimeProvider with the system clock.
type RealTimeProvider struct{}

// Now returns the current system time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// After starts a standard library timer.
func (RealTimeProvider) After(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTimer(d)
	return t.C, func() { t.Stop() }
}

// getTimeProvider returns tp, or the real clock when tp is nil.
func getTimeProvider(tp TimeProvider) TimeProvider {
	if tp != nil {
		return tp
	}
	return RealTimeProvider{}
}
