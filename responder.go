package filexfer

import (
	"fmt"
	"sync"

	"github.com/opd-ai/filexfer/file"
	"github.com/opd-ai/filexfer/stanza"
	"github.com/opd-ai/filexfer/transport"
	"github.com/sirupsen/logrus"
)

type offerState int

const (
	offerPending offerState = iota
	offerAnswered
	offerWithdrawn
)

// IncomingOffer is an offer received from a peer, waiting for Accept or
// Decline. Each offer can be answered once.
type IncomingOffer struct {
	Offer   TransferOffer
	Peer    stanza.JID
	Request *stanza.Message

	mu    sync.Mutex
	state offerState
}

// Withdrawn reports whether the initiator withdrew the offer.
func (o *IncomingOffer) Withdrawn() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == offerWithdrawn
}

// Answered reports whether Accept or Decline has been called.
func (o *IncomingOffer) Answered() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == offerAnswered
}

func (o *IncomingOffer) checkPending() error {
	switch o.state {
	case offerAnswered:
		return ErrAlreadyAnswered
	case offerWithdrawn:
		return ErrOfferWithdrawn
	}
	return nil
}

// handleOffer validates an inbound offer and routes it to the incoming
// callbacks.
func (ft *FileTransfer) handleOffer(msg *stanza.Message) {
	offer := parseOffer(msg)

	logrus.WithFields(logrus.Fields{
		"function":   "FileTransfer.handleOffer",
		"from":       msg.From,
		"session_id": offer.SessionID,
		"file_name":  offer.Filename,
		"file_size":  offer.Size,
		"methods":    offer.Transports,
	}).Info("Received file offer")

	if err := offer.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "FileTransfer.handleOffer",
			"from":     msg.From,
			"error":    err.Error(),
		}).Warn("Rejecting malformed offer")
		ft.sendBestEffort("FileTransfer.handleOffer",
			msg.ErrorAnswer(stanza.ErrorTypeModify, stanza.ConditionBadRequest, err.Error()))
		return
	}

	in := &IncomingOffer{Offer: offer, Peer: msg.From, Request: msg}
	key := offerKey{peer: msg.From, sid: offer.SessionID}

	ft.mu.Lock()
	_, duplicate := ft.pending[key]
	if !duplicate {
		ft.pending[key] = in
	}
	ft.mu.Unlock()

	if duplicate {
		logrus.WithFields(logrus.Fields{
			"function":   "FileTransfer.handleOffer",
			"from":       msg.From,
			"session_id": offer.SessionID,
		}).Warn("Duplicate session id from peer")
		ft.sendBestEffort("FileTransfer.handleOffer",
			msg.ErrorAnswer(stanza.ErrorTypeCancel, stanza.ConditionNotAcceptable, "Session already pending"))
		return
	}

	if !ft.incoming.Dispatch(in) {
		logrus.WithFields(logrus.Fields{
			"function":   "FileTransfer.handleOffer",
			"from":       msg.From,
			"session_id": offer.SessionID,
		}).Info("No callback claimed offer, declining")
		ft.Decline(in)
	}
}

// Accept answers an incoming offer, choosing a stream method and optionally
// requesting a range, and returns the Target handle for the agreed stream.
//
// A range is ignored when the offer did not advertise range support. A range
// that does not fit the offered file returns ErrInvalidRange and leaves the
// offer unanswered. When no offered method is enabled locally the peer is
// told no-valid-streams and ErrNoCompatibleTransport is returned.
func (ft *FileTransfer) Accept(offer *IncomingOffer, rng *stanza.Range) (transport.Handle, error) {
	sid := offer.Offer.SessionID
	fail := func(err error) (transport.Handle, error) {
		return nil, newNegotiationError("accept", offer.Peer, sid, err)
	}

	offer.mu.Lock()
	if err := offer.checkPending(); err != nil {
		offer.mu.Unlock()
		return fail(err)
	}

	var granted *stanza.Range
	if offer.Offer.SupportsRange && !rng.IsZero() {
		if _, err := file.ResolveSpan(offer.Offer.Size, rng); err != nil {
			offer.mu.Unlock()
			return fail(fmt.Errorf("%w: %w", ErrInvalidRange, err))
		}
		granted = &stanza.Range{}
		if rng.Offset != nil {
			granted.Offset = stanza.Uint64(*rng.Offset)
		}
		if rng.Length != nil {
			granted.Length = stanza.Uint64(*rng.Length)
		}
	} else if !rng.IsZero() {
		logrus.WithFields(logrus.Fields{
			"function":   "FileTransfer.Accept",
			"peer":       offer.Peer,
			"session_id": sid,
		}).Debug("Offer does not support ranges, ignoring requested range")
	}
	offer.state = offerAnswered
	offer.mu.Unlock()

	defer ft.forget(offer)
	req := offer.Request

	if len(offer.Offer.Transports) == 0 {
		ft.sendBestEffort("FileTransfer.Accept",
			req.ErrorAnswer(stanza.ErrorTypeModify, stanza.ConditionBadRequest, "No stream methods offered"))
		return fail(fmt.Errorf("%w: offer lists no stream methods", ErrProtocolViolation))
	}

	method, ok := transport.Select(offer.Offer.Transports, ft.opts.EnabledMethods())
	if !ok {
		reply := req.ErrorAnswer(stanza.ErrorTypeCancel, stanza.ConditionBadRequest, "")
		reply.Error.AppCondition = stanza.AppConditionNoValidStreams
		ft.sendBestEffort("FileTransfer.Accept", reply)

		logrus.WithFields(logrus.Fields{
			"function":   "FileTransfer.Accept",
			"peer":       offer.Peer,
			"session_id": sid,
			"offered":    offer.Offer.Transports,
			"enabled":    ft.opts.EnabledMethods(),
		}).Warn("No compatible stream method")
		return fail(ErrNoCompatibleTransport)
	}

	reply := req.Answer(stanza.TypeResult)
	reply.SI = &stanza.SI{
		Feature: &stanza.FeatureForm{
			Type:          stanza.FormTypeSubmit,
			StreamMethods: []string{method.Namespace()},
		},
	}
	if granted != nil {
		reply.SI.File = &stanza.File{Range: granted}
	}
	if err := ft.stream.Send(reply); err != nil {
		return fail(fmt.Errorf("send accept: %w", err))
	}

	handle, err := ft.opts.Factory.NewHandle(transport.Binding{
		SessionID: sid,
		Local:     ft.stream.JID(),
		Peer:      offer.Peer,
		Role:      transport.RoleTarget,
		Method:    method,
	})
	if err != nil {
		return fail(fmt.Errorf("create target handle: %w", err))
	}

	logrus.WithFields(logrus.Fields{
		"function":   "FileTransfer.Accept",
		"peer":       offer.Peer,
		"session_id": sid,
		"method":     method.String(),
		"ranged":     granted != nil,
	}).Info("Accepted file offer")

	return handle, nil
}

// Decline refuses an incoming offer. It never fails: send errors are logged,
// and declining an offer that was already answered or withdrawn does nothing.
func (ft *FileTransfer) Decline(offer *IncomingOffer) {
	offer.mu.Lock()
	if err := offer.checkPending(); err != nil {
		offer.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function":   "FileTransfer.Decline",
			"peer":       offer.Peer,
			"session_id": offer.Offer.SessionID,
			"reason":     err.Error(),
		}).Debug("Ignoring decline")
		return
	}
	offer.state = offerAnswered
	offer.mu.Unlock()

	ft.forget(offer)
	ft.sendBestEffort("FileTransfer.Decline",
		offer.Request.ErrorAnswer(stanza.ErrorTypeCancel, stanza.ConditionForbidden, "Offer declined"))

	logrus.WithFields(logrus.Fields{
		"function":   "FileTransfer.Decline",
		"peer":       offer.Peer,
		"session_id": offer.Offer.SessionID,
	}).Info("Declined file offer")
}

// handleWithdraw retires a pending offer the initiator abandoned.
func (ft *FileTransfer) handleWithdraw(msg *stanza.Message) {
	key := offerKey{peer: msg.From, sid: msg.SI.ID}

	ft.mu.Lock()
	offer, ok := ft.pending[key]
	if ok {
		delete(ft.pending, key)
	}
	cb := ft.withdrawnCallback
	ft.mu.Unlock()

	if ok {
		offer.mu.Lock()
		if offer.state != offerPending {
			ok = false
		} else {
			offer.state = offerWithdrawn
		}
		offer.mu.Unlock()
	}

	if !ok {
		logrus.WithFields(logrus.Fields{
			"function":   "FileTransfer.handleWithdraw",
			"from":       msg.From,
			"session_id": msg.SI.ID,
		}).Debug("Withdrawal for unknown session")
		ft.sendBestEffort("FileTransfer.handleWithdraw",
			msg.ErrorAnswer(stanza.ErrorTypeCancel, stanza.ConditionItemNotFound, ""))
		return
	}

	ft.sendBestEffort("FileTransfer.handleWithdraw", msg.Answer(stanza.TypeResult))

	logrus.WithFields(logrus.Fields{
		"function":   "FileTransfer.handleWithdraw",
		"from":       msg.From,
		"session_id": msg.SI.ID,
	}).Info("Peer withdrew file offer")

	if cb != nil {
		cb(offer)
	}
}
