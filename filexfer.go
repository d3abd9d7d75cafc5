package filexfer

import (
	"sync"

	"github.com/opd-ai/filexfer/callback"
	"github.com/opd-ai/filexfer/stanza"
	"github.com/sirupsen/logrus"
)

// IncomingOfferCallback is invoked for each offer received from a peer. It
// returns true to claim the offer; a claimed offer must eventually be
// answered with Accept or Decline. Offers nobody claims are declined.
type IncomingOfferCallback func(offer *IncomingOffer) bool

// WithdrawnCallback is invoked when a peer withdraws an offer that was not
// answered yet.
type WithdrawnCallback func(offer *IncomingOffer)

type offerKey struct {
	peer stanza.JID
	sid  string
}

// FileTransfer negotiates file transfers over a stanza stream, in both
// directions: Offer sends files, and incoming offers are routed to the
// callbacks added with AddIncomingCallback.
type FileTransfer struct {
	stream stanza.Stream
	opts   *Options

	handlerHandle callback.Handle
	incoming      *callback.Registry[*IncomingOffer]

	mu                sync.Mutex
	pending           map[offerKey]*IncomingOffer
	withdrawnCallback WithdrawnCallback
	closed            bool
}

// New creates a FileTransfer bound to stream and registers its offer handler.
// A nil opts selects NewOptions().
func New(stream stanza.Stream, opts *Options) (*FileTransfer, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "New",
			"error":    err.Error(),
		}).Error("Invalid file transfer options")
		return nil, err
	}

	ft := &FileTransfer{
		stream:   stream,
		opts:     opts.withDefaults(),
		incoming: callback.New[*IncomingOffer]("incoming-offers:" + stream.JID().String()),
		pending:  make(map[offerKey]*IncomingOffer),
	}
	ft.handlerHandle = stream.AddHandler(ft.opts.StanzaPriority, "filexfer", ft.handleStanza)

	logrus.WithFields(logrus.Fields{
		"function": "New",
		"jid":      stream.JID(),
		"methods":  ft.opts.EnabledMethods(),
		"priority": ft.opts.StanzaPriority,
	}).Info("File transfer negotiation ready")

	return ft, nil
}

// Close unregisters the offer handler. Offers already pending can still be
// answered.
func (ft *FileTransfer) Close() {
	ft.mu.Lock()
	if ft.closed {
		ft.mu.Unlock()
		return
	}
	ft.closed = true
	ft.mu.Unlock()

	ft.stream.RemoveHandler(ft.handlerHandle)

	logrus.WithFields(logrus.Fields{
		"function": "FileTransfer.Close",
		"jid":      ft.stream.JID(),
	}).Info("File transfer negotiation closed")
}

// Options returns a copy of the effective options.
func (ft *FileTransfer) Options() Options {
	return *ft.opts
}

// AddIncomingCallback registers a callback for incoming offers. Callbacks
// run in ascending priority order; the first to return true claims the
// offer.
func (ft *FileTransfer) AddIncomingCallback(priority int, ref string, cb IncomingOfferCallback) callback.Handle {
	return ft.incoming.Add(priority, ref, callback.Handler[*IncomingOffer](cb))
}

// RemoveIncomingCallback unregisters a callback added with
// AddIncomingCallback.
func (ft *FileTransfer) RemoveIncomingCallback(h callback.Handle) bool {
	return ft.incoming.Remove(h)
}

// OnWithdrawn sets the callback for offers withdrawn by their initiator.
func (ft *FileTransfer) OnWithdrawn(cb WithdrawnCallback) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.withdrawnCallback = cb
}

// PendingOffers returns the incoming offers that have not been answered.
func (ft *FileTransfer) PendingOffers() []*IncomingOffer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	out := make([]*IncomingOffer, 0, len(ft.pending))
	for _, o := range ft.pending {
		out = append(out, o)
	}
	return out
}

// handleStanza is the stream handler. It claims offers and withdrawals and
// leaves everything else to later handlers.
func (ft *FileTransfer) handleStanza(msg *stanza.Message) bool {
	switch {
	case isWithdrawRequest(msg):
		ft.handleWithdraw(msg)
		return true
	case isOfferRequest(msg):
		ft.handleOffer(msg)
		return true
	default:
		return false
	}
}

func (ft *FileTransfer) forget(o *IncomingOffer) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	key := offerKey{peer: o.Peer, sid: o.Offer.SessionID}
	if ft.pending[key] == o {
		delete(ft.pending, key)
	}
}

// sendBestEffort sends msg and logs a failure instead of returning it.
func (ft *FileTransfer) sendBestEffort(function string, msg *stanza.Message) {
	if err := ft.stream.Send(msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": function,
			"to":       msg.To,
			"id":       msg.ID,
			"type":     msg.Type,
			"error":    err.Error(),
		}).Warn("Best-effort send failed")
	}
}
