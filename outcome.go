package filexfer

import (
	"fmt"
	"io"

	"github.com/opd-ai/filexfer/file"
	"github.com/opd-ai/filexfer/transport"
)

// OutcomeKind is the terminal state of an offer.
type OutcomeKind int

const (
	// OutcomeFailed means negotiation did not complete; Outcome.Reason says why.
	OutcomeFailed OutcomeKind = iota
	// OutcomeAccepted means the peer accepted and a transport was agreed.
	OutcomeAccepted
	// OutcomeDeclined means the peer refused the offer. It is not an error.
	OutcomeDeclined
)

// String returns the outcome name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeDeclined:
		return "declined"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of an offer.
type Outcome struct {
	Kind OutcomeKind

	// Set when accepted. Range is nil when the peer asked for the whole
	// file; Reader is positioned at the agreed range either way.
	SessionID string
	Method    transport.Method
	Range     *file.Span
	Handle    transport.Handle
	Reader    io.Reader

	// Set when failed.
	Reason error
}

// Accepted reports whether the peer accepted the offer.
func (o Outcome) Accepted() bool {
	return o.Kind == OutcomeAccepted
}

// Declined reports whether the peer declined the offer.
func (o Outcome) Declined() bool {
	return o.Kind == OutcomeDeclined
}

func failed(err error) (Outcome, error) {
	return Outcome{Kind: OutcomeFailed, Reason: err}, err
}
