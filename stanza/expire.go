package stanza

import "time"

// DefaultExpireSeconds is the lifetime used when an expiry hint is created
// without an explicit duration: seven days.
const DefaultExpireSeconds = 604800

// Expire is an advisory lifetime attached to a message. Peers may discard an
// unanswered request once it has expired; nothing in this module enforces it.
type Expire struct {
	Seconds uint32
}

// NewExpire creates an expiry hint. Durations of zero or less select
// DefaultExpireSeconds; sub-second remainders are truncated.
func NewExpire(d time.Duration) *Expire {
	if d <= 0 {
		return &Expire{Seconds: DefaultExpireSeconds}
	}
	secs := d / time.Second
	if secs > time.Duration(^uint32(0)) {
		secs = time.Duration(^uint32(0))
	}
	return &Expire{Seconds: uint32(secs)}
}

// Duration returns the hint as a time.Duration.
func (e *Expire) Duration() time.Duration {
	if e == nil {
		return 0
	}
	return time.Duration(e.Seconds) * time.Second
}
