package filexfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/filexfer/file"
	"github.com/opd-ai/filexfer/stanza"
	"github.com/opd-ai/filexfer/transport"
	"github.com/sirupsen/logrus"
)

// Offer offers src to peer and blocks until the peer answers, the request
// timeout elapses, or ctx is done.
//
// A decline is a normal outcome: Offer returns an Outcome of kind
// OutcomeDeclined and a nil error. The error is non-nil exactly when the
// outcome is OutcomeFailed, and wraps one of ErrInvalidConfig, ErrSourceIO,
// ErrProtocolViolation, ErrPeerError, ErrTimeout, or the context error.
//
// When ctx is cancelled while waiting, the peer is sent a best-effort
// withdrawal notice.
func (ft *FileTransfer) Offer(ctx context.Context, peer stanza.JID, src file.Source, desc string) (Outcome, error) {
	methods := ft.opts.EnabledMethods()
	if len(methods) == 0 {
		return failed(newNegotiationError("offer", peer, "", fmt.Errorf("%w: no stream methods enabled", ErrInvalidConfig)))
	}

	meta, err := src.Metadata()
	if err != nil {
		if !errors.Is(err, file.ErrSourceIO) {
			err = fmt.Errorf("%w: %w", file.ErrSourceIO, err)
		}
		return failed(newNegotiationError("offer", peer, "", err))
	}

	sid := ft.opts.IDs.NewID()
	offer := newTransferOffer(sid, meta, desc, file.SupportsRange(src), methods)
	offer.Expires = ft.opts.OfferExpiry
	if err := offer.Validate(); err != nil {
		return failed(newNegotiationError("offer", peer, sid, err))
	}

	logrus.WithFields(logrus.Fields{
		"function":   "FileTransfer.Offer",
		"peer":       peer,
		"session_id": sid,
		"file_name":  offer.Filename,
		"file_size":  offer.Size,
		"methods":    methods,
		"ranged":     offer.SupportsRange,
	}).Info("Offering file")

	req := offer.request(ft.opts.IDs.NewID(), peer)
	reply, err := ft.stream.SendAndAwait(ctx, req, ft.opts.RequestTimeout)
	if err != nil {
		return ft.offerFailed(ctx, peer, sid, err)
	}

	return ft.offerAccepted(src, &offer, peer, reply)
}

// offerFailed maps a SendAndAwait error to an outcome.
func (ft *FileTransfer) offerFailed(ctx context.Context, peer stanza.JID, sid string, err error) (Outcome, error) {
	logFields := logrus.Fields{
		"function":   "FileTransfer.Offer",
		"peer":       peer,
		"session_id": sid,
		"error":      err.Error(),
	}

	if re, ok := stanza.AsReplyError(err); ok {
		if re.Condition() == stanza.ConditionForbidden {
			logrus.WithFields(logFields).Info("Peer declined file offer")
			return Outcome{Kind: OutcomeDeclined, SessionID: sid}, nil
		}
		logrus.WithFields(logFields).Warn("Peer rejected file offer")
		return failed(newNegotiationError("offer", peer, sid, fmt.Errorf("%w: %w", ErrPeerError, re)))
	}

	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		logrus.WithFields(logFields).Info("Offer cancelled, withdrawing")
		ft.sendBestEffort("FileTransfer.Offer", withdrawRequest(ft.opts.IDs.NewID(), sid, peer))
		return failed(newNegotiationError("offer", peer, sid, err))
	}

	logrus.WithFields(logFields).Warn("File offer failed")
	return failed(newNegotiationError("offer", peer, sid, err))
}

// offerAccepted interprets a result reply, positions the source, and builds
// the Initiator handle.
func (ft *FileTransfer) offerAccepted(src file.Source, offer *TransferOffer, peer stanza.JID, reply *stanza.Message) (Outcome, error) {
	sid := offer.SessionID

	violation := func(format string, args ...any) (Outcome, error) {
		err := fmt.Errorf("%w: "+format, append([]any{ErrProtocolViolation}, args...)...)
		logrus.WithFields(logrus.Fields{
			"function":   "FileTransfer.Offer",
			"peer":       peer,
			"session_id": sid,
			"error":      err.Error(),
		}).Warn("Peer reply violates negotiation")
		ft.sendBestEffort("FileTransfer.Offer", &stanza.Message{
			Type:  stanza.TypeError,
			ID:    reply.ID,
			To:    peer,
			Error: &stanza.Error{Type: stanza.ErrorTypeModify, Condition: stanza.ConditionBadRequest, Text: err.Error()},
		})
		return failed(newNegotiationError("offer", peer, sid, err))
	}

	if reply.SI == nil || reply.SI.Feature == nil || len(reply.SI.Feature.StreamMethods) == 0 {
		return violation("reply chose no stream method")
	}
	method := transport.Method(reply.SI.Feature.StreamMethods[0])
	if !transport.Contains(offer.Transports, method) {
		return violation("peer chose %s, which was not offered", method)
	}

	var (
		reader io.Reader = src
		span   *file.Span
	)
	if reply.SI.File != nil && !reply.SI.File.Range.IsZero() {
		resolved, err := file.ResolveSpan(offer.Size, reply.SI.File.Range)
		if err != nil {
			return violation("granted range: %v", err)
		}
		if !offer.SupportsRange {
			logrus.WithFields(logrus.Fields{
				"function":   "FileTransfer.Offer",
				"peer":       peer,
				"session_id": sid,
				"offset":     resolved.Offset,
			}).Debug("Peer requested range on non-rangeable source, emulating")
		}
		reader, err = file.ApplySpan(src, resolved)
		if err != nil {
			return failed(newNegotiationError("offer", peer, sid, err))
		}
		span = &resolved
	}

	handle, err := ft.opts.Factory.NewHandle(transport.Binding{
		SessionID: sid,
		Local:     ft.stream.JID(),
		Peer:      peer,
		Role:      transport.RoleInitiator,
		Method:    method,
	})
	if err != nil {
		return failed(newNegotiationError("offer", peer, sid, fmt.Errorf("create initiator handle: %w", err)))
	}

	logrus.WithFields(logrus.Fields{
		"function":   "FileTransfer.Offer",
		"peer":       peer,
		"session_id": sid,
		"method":     method.String(),
		"ranged":     span != nil,
	}).Info("Peer accepted file offer")

	return Outcome{
		Kind:      OutcomeAccepted,
		SessionID: sid,
		Method:    method,
		Range:     span,
		Handle:    handle,
		Reader:    reader,
	}, nil
}

// IsDeclined reports whether err is a peer's decline reply. Offer already
// maps declines to OutcomeDeclined; this serves callers that talk to the
// stream directly.
func IsDeclined(err error) bool {
	re, ok := stanza.AsReplyError(err)
	return ok && re.Condition() == stanza.ConditionForbidden
}
