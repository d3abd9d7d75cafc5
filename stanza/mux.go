package stanza

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/filexfer/callback"
	"github.com/sirupsen/logrus"
)

// DefaultRequestTimeout bounds SendAndAwait when the caller passes no timeout.
const DefaultRequestTimeout = 30 * time.Second

// Sender transmits a message without waiting for a reply.
type Sender interface {
	Send(msg *Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(msg *Message) error

// Send implements Sender.
func (f SenderFunc) Send(msg *Message) error {
	return f(msg)
}

// Stream is the message channel negotiation runs over: fire-and-forget
// sends, correlated request/response, and a handler chain for inbound
// requests.
type Stream interface {
	Sender

	// SendAndAwait sends msg and blocks until the correlated reply arrives,
	// the timeout elapses (ErrTimeout), or ctx is done. An error reply is
	// returned as *ReplyError.
	SendAndAwait(ctx context.Context, msg *Message, timeout time.Duration) (*Message, error)

	// AddHandler registers a handler for inbound requests.
	AddHandler(priority int, ref string, h callback.Handler[*Message]) callback.Handle

	// RemoveHandler unregisters a handler added with AddHandler.
	RemoveHandler(h callback.Handle) bool

	// JID returns the local identity.
	JID() JID
}

// Mux demultiplexes inbound messages for one local identity: replies go to
// their waiting requests, requests go through a priority-ordered handler
// chain. Unclaimed requests are answered with feature-not-implemented.
type Mux struct {
	jid            JID
	out            Sender
	tracker        *Tracker
	handlers       *callback.Registry[*Message]
	timeProvider   TimeProvider
	defaultTimeout time.Duration
}

// NewMux creates a Mux for jid that writes outbound messages to out.
func NewMux(jid JID, out Sender) *Mux {
	logrus.WithFields(logrus.Fields{
		"function": "NewMux",
		"jid":      jid,
	}).Debug("Creating stanza mux")

	return &Mux{
		jid:            jid,
		out:            out,
		tracker:        NewTracker(),
		handlers:       callback.New[*Message]("stanza:" + string(jid)),
		timeProvider:   RealTimeProvider{},
		defaultTimeout: DefaultRequestTimeout,
	}
}

// SetTimeProvider replaces the clock used for request timeouts.
func (m *Mux) SetTimeProvider(tp TimeProvider) {
	m.timeProvider = getTimeProvider(tp)
}

// SetDefaultTimeout sets the timeout used when SendAndAwait is called
// without one.
func (m *Mux) SetDefaultTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultRequestTimeout
	}
	m.defaultTimeout = d
}

// JID implements Stream.
func (m *Mux) JID() JID {
	return m.jid
}

// Tracker exposes the reply tracker, mainly for inspection in tests.
func (m *Mux) Tracker() *Tracker {
	return m.tracker
}

// AddHandler implements Stream.
func (m *Mux) AddHandler(priority int, ref string, h callback.Handler[*Message]) callback.Handle {
	return m.handlers.Add(priority, ref, h)
}

// RemoveHandler implements Stream.
func (m *Mux) RemoveHandler(h callback.Handle) bool {
	return m.handlers.Remove(h)
}

// Send implements Sender. An empty From is filled with the local JID.
func (m *Mux) Send(msg *Message) error {
	if msg.From == "" {
		msg.From = m.jid
	}
	return m.out.Send(msg)
}

// SendAndAwait implements Stream. The waiter is registered before the
// message is handed to the sender, so a reply that arrives before Send
// returns is not lost.
func (m *Mux) SendAndAwait(ctx context.Context, msg *Message, timeout time.Duration) (*Message, error) {
	if timeout <= 0 {
		timeout = m.defaultTimeout
	}

	replies, err := m.tracker.Register(msg.ID)
	if err != nil {
		return nil, err
	}

	if err := m.Send(msg); err != nil {
		m.tracker.Cancel(msg.ID)
		return nil, fmt.Errorf("send request %s: %w", msg.ID, err)
	}

	expired, stop := m.timeProvider.After(timeout)
	defer stop()

	select {
	case reply := <-replies:
		return interpretReply(reply)
	case <-expired:
		if !m.tracker.Cancel(msg.ID) {
			// Resolved between the timer firing and the cancel.
			return interpretReply(<-replies)
		}
		logrus.WithFields(logrus.Fields{
			"function": "Mux.SendAndAwait",
			"id":       msg.ID,
			"to":       msg.To,
			"timeout":  timeout,
		}).Warn("Request timed out")
		return nil, ErrTimeout
	case <-ctx.Done():
		if !m.tracker.Cancel(msg.ID) {
			return interpretReply(<-replies)
		}
		return nil, ctx.Err()
	}
}

// Receive is the inbound entry point for messages addressed to this Mux.
func (m *Mux) Receive(msg *Message) {
	if msg == nil {
		return
	}

	if msg.Type.IsResponse() {
		// Late or duplicate replies find no waiter and are dropped.
		m.tracker.Resolve(msg)
		return
	}

	if m.handlers.Dispatch(msg) {
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "Mux.Receive",
		"id":       msg.ID,
		"from":     msg.From,
		"type":     msg.Type,
	}).Debug("No handler claimed request")

	if !msg.Type.IsRequest() {
		return
	}
	reply := msg.ErrorAnswer(ErrorTypeCancel, ConditionFeatureNotImplemented, "")
	if err := m.Send(reply); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Mux.Receive",
			"id":       msg.ID,
			"to":       msg.From,
			"error":    err.Error(),
		}).Warn("Failed to send feature-not-implemented reply")
	}
}

func interpretReply(reply *Message) (*Message, error) {
	if reply.Type == TypeError {
		return reply, &ReplyError{Reply: reply}
	}
	return reply, nil
}

// AsReplyError extracts a *ReplyError from err.
func AsReplyError(err error) (*ReplyError, bool) {
	var re *ReplyError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
