// Package stanza models the request/response control messages that carry
// stream-initiation negotiation, and provides the plumbing that routes them.
//
// Wire encoding is left to the host messaging stack. A host feeds decoded
// messages into Mux.Receive and implements Sender for the outbound side;
// everything above this package talks to the Stream interface.
//
// Correlation: every request carries an ID. SendAndAwait registers a waiter
// with the Tracker before the request is sent, and the first reply with that
// ID resolves it. Replies that arrive after the waiter was resolved, timed
// out, or cancelled are dropped.
//
// Example:
//
//	mux := stanza.NewMux("alice@example.com/laptop", sender)
//	reply, err := mux.SendAndAwait(ctx, req, 10*time.Second)
//	if re, ok := stanza.AsReplyError(err); ok {
//	    log.Printf("peer refused: %s", re.Condition())
//	}
package stanza
