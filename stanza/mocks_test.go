package stanza

import (
	"sync"
	"time"
)

// recordingSender captures outbound messages. When reply is set it is
// invoked synchronously for each sent message.
type recordingSender struct {
	mu    sync.Mutex
	sent  []*Message
	err   error
	reply func(msg *Message)
}

func (s *recordingSender) Send(msg *Message) error {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return s.err
	}
	s.sent = append(s.sent, msg.Clone())
	reply := s.reply
	s.mu.Unlock()

	if reply != nil {
		reply(msg)
	}
	return nil
}

func (s *recordingSender) Sent() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Message(nil), s.sent...)
}

// manualTimeProvider fires timers only when Fire is called.
type manualTimeProvider struct {
	mu      sync.Mutex
	now     time.Time
	timers  []chan time.Time
	started chan struct{}
}

func newManualTimeProvider() *manualTimeProvider {
	return &manualTimeProvider{
		now:     time.Unix(1700000000, 0),
		started: make(chan struct{}, 16),
	}
}

func (m *manualTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualTimeProvider) After(d time.Duration) (<-chan time.Time, func()) {
	ch := make(chan time.Time, 1)
	m.mu.Lock()
	m.timers = append(m.timers, ch)
	m.mu.Unlock()
	m.started <- struct{}{}
	return ch, func() {}
}

// Fire expires every timer started so far.
func (m *manualTimeProvider) Fire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.timers {
		select {
		case ch <- m.now:
		default:
		}
	}
	m.timers = nil
}
