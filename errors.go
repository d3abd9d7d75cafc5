package filexfer

import (
	"errors"
	"fmt"

	"github.com/opd-ai/filexfer/file"
	"github.com/opd-ai/filexfer/stanza"
)

var (
	// ErrProtocolViolation indicates a malformed or contradictory negotiation
	// message, such as an offer without stream methods or a reply choosing a
	// method that was never offered.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrNoCompatibleTransport indicates the offered and locally enabled
	// stream methods share nothing.
	ErrNoCompatibleTransport = errors.New("no compatible transport")

	// ErrTimeout indicates the peer did not answer within the request timeout.
	ErrTimeout = stanza.ErrTimeout

	// ErrPeerError indicates the peer answered with an error other than a
	// decline.
	ErrPeerError = errors.New("peer returned error")

	// ErrSourceIO indicates the data source could not be read.
	ErrSourceIO = file.ErrSourceIO

	// ErrInvalidConfig indicates the local configuration cannot produce an
	// offer, for example with every stream method disabled.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidRange indicates a requested range does not fit the offered file.
	ErrInvalidRange = errors.New("invalid range")

	// ErrAlreadyAnswered indicates Accept or Decline was called on an offer
	// that has already been answered.
	ErrAlreadyAnswered = errors.New("offer already answered")

	// ErrOfferWithdrawn indicates the initiator withdrew the offer.
	ErrOfferWithdrawn = errors.New("offer withdrawn")
)

// NegotiationError adds session context to a negotiation failure.
type NegotiationError struct {
	Op        string // "offer", "accept"
	Peer      stanza.JID
	SessionID string
	Err       error
}

func (e *NegotiationError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("filexfer: %s with %s: %v", e.Op, e.Peer, e.Err)
	}
	return fmt.Sprintf("filexfer: %s with %s (session %s): %v", e.Op, e.Peer, e.SessionID, e.Err)
}

// Unwrap returns the underlying error.
func (e *NegotiationError) Unwrap() error {
	return e.Err
}

func newNegotiationError(op string, peer stanza.JID, sid string, err error) *NegotiationError {
	return &NegotiationError{Op: op, Peer: peer, SessionID: sid, Err: err}
}
