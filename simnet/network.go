package simnet

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/filexfer/stanza"
	"github.com/sirupsen/logrus"
)

// ErrUnknownPeer indicates a message was addressed to a JID that has not
// joined the network.
var ErrUnknownPeer = errors.New("simnet: unknown peer")

// DropFilter decides whether a message is lost in transit. Returning true
// drops the message silently, as a lossy link would.
type DropFilter func(msg *stanza.Message) bool

// DeliveryRecord represents a message delivery event for test verification.
type DeliveryRecord struct {
	From      stanza.JID
	To        stanza.JID
	ID        string
	Type      stanza.Type
	Timestamp time.Time
	Delivered bool
	Dropped   bool
	Error     error
}

// Network is an in-memory message network. Each joined JID gets a
// stanza.Mux whose outbound messages are routed to the addressed peer's Mux.
//
// Delivery is synchronous by default: Send returns after the receiving Mux
// has processed the message. SetAsync switches to one goroutine per message.
type Network struct {
	mu      sync.RWMutex
	peers   map[stanza.JID]*stanza.Mux
	filter  DropFilter
	async   bool
	records []DeliveryRecord
	clock   stanza.TimeProvider
	wg      sync.WaitGroup
}

// New creates an empty network.
func New() *Network {
	logrus.WithFields(logrus.Fields{
		"function": "simnet.New",
	}).Debug("Creating simulated network")

	return &Network{
		peers: make(map[stanza.JID]*stanza.Mux),
		clock: stanza.RealTimeProvider{},
	}
}

// Join attaches jid to the network and returns its Mux. Joining twice
// returns the existing Mux.
func (n *Network) Join(jid stanza.JID) *stanza.Mux {
	n.mu.Lock()
	defer n.mu.Unlock()

	if mux, ok := n.peers[jid]; ok {
		return mux
	}
	mux := stanza.NewMux(jid, &endpoint{net: n, jid: jid})
	n.peers[jid] = mux

	logrus.WithFields(logrus.Fields{
		"function":    "Network.Join",
		"jid":         jid,
		"total_peers": len(n.peers),
	}).Info("Peer joined simulated network")
	return mux
}

// Leave detaches jid. Messages addressed to it afterwards fail with
// ErrUnknownPeer.
func (n *Network) Leave(jid stanza.JID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.peers, jid)

	logrus.WithFields(logrus.Fields{
		"function":        "Network.Leave",
		"jid":             jid,
		"remaining_peers": len(n.peers),
	}).Info("Peer left simulated network")
}

// SetDropFilter installs f; nil delivers everything.
func (n *Network) SetDropFilter(f DropFilter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.filter = f
}

// SetAsync selects asynchronous delivery.
func (n *Network) SetAsync(async bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.async = async
}

// SetTimeProvider sets the clock used for delivery timestamps.
func (n *Network) SetTimeProvider(tp stanza.TimeProvider) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if tp == nil {
		tp = stanza.RealTimeProvider{}
	}
	n.clock = tp
}

// Wait blocks until all asynchronous deliveries have completed.
func (n *Network) Wait() {
	n.wg.Wait()
}

// Records returns a copy of the delivery log.
func (n *Network) Records() []DeliveryRecord {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]DeliveryRecord(nil), n.records...)
}

// ClearRecords empties the delivery log.
func (n *Network) ClearRecords() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = nil
}

func (n *Network) route(from stanza.JID, msg *stanza.Message) error {
	if msg.From == "" {
		msg.From = from
	}

	n.mu.Lock()
	target, ok := n.peers[msg.To]
	filter, async := n.filter, n.async
	rec := DeliveryRecord{
		From:      msg.From,
		To:        msg.To,
		ID:        msg.ID,
		Type:      msg.Type,
		Timestamp: n.clock.Now(),
	}

	var err error
	switch {
	case !ok:
		err = fmt.Errorf("%w: %s", ErrUnknownPeer, msg.To)
		rec.Error = err
	case filter != nil && filter(msg):
		rec.Dropped = true
	default:
		rec.Delivered = true
	}
	n.records = append(n.records, rec)
	n.mu.Unlock()

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Network.route",
			"from":     msg.From,
			"to":       msg.To,
			"id":       msg.ID,
			"error":    err.Error(),
		}).Warn("Message addressed to unknown peer")
		return err
	}
	if rec.Dropped {
		logrus.WithFields(logrus.Fields{
			"function": "Network.route",
			"from":     msg.From,
			"to":       msg.To,
			"id":       msg.ID,
			"type":     msg.Type,
		}).Debug("Message dropped by filter")
		return nil
	}

	// The receiver gets its own copy, as it would off a real wire.
	delivered := msg.Clone()
	if async {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			target.Receive(delivered)
		}()
		return nil
	}
	target.Receive(delivered)
	return nil
}

// endpoint is the stanza.Sender of one joined peer.
type endpoint struct {
	net *Network
	jid stanza.JID
}

func (e *endpoint) Send(msg *stanza.Message) error {
	return e.net.route(e.jid, msg)
}
