package stanza

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Tracker correlates replies with outstanding requests by correlation ID.
//
// Each waiter is resolved at most once: Resolve and Cancel remove the entry
// under the same lock that looks it up, so a duplicate or late reply finds
// nothing and is dropped.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]chan *Message
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		pending: make(map[string]chan *Message),
	}
}

// Register creates a waiter for id. The returned channel receives exactly
// one message if the waiter is resolved, and nothing if it is cancelled.
func (t *Tracker) Register(id string) (<-chan *Message, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.pending[id]; exists {
		return nil, ErrPendingID
	}
	ch := make(chan *Message, 1)
	t.pending[id] = ch
	return ch, nil
}

// Resolve delivers msg to the waiter registered under msg.ID and retires the
// waiter. It reports false when no waiter exists.
func (t *Tracker) Resolve(msg *Message) bool {
	t.mu.Lock()
	ch, exists := t.pending[msg.ID]
	if exists {
		delete(t.pending, msg.ID)
	}
	t.mu.Unlock()

	if !exists {
		logrus.WithFields(logrus.Fields{
			"function": "Tracker.Resolve",
			"id":       msg.ID,
			"from":     msg.From,
			"type":     msg.Type,
		}).Debug("No waiter for reply, dropping")
		return false
	}

	// Buffered with capacity one and written only here, after removal.
	ch <- msg
	return true
}

// Cancel retires the waiter for id without delivering anything. It reports
// false when the waiter was already resolved or never existed.
func (t *Tracker) Cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.pending[id]; !exists {
		return false
	}
	delete(t.pending, id)
	return true
}

// Pending returns the number of outstanding waiters.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
