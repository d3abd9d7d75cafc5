// Package simnet provides an in-memory message network for deterministic
// testing and demos of file-transfer negotiation.
//
// # Overview
//
// Each peer joins the network under a JID and receives a *stanza.Mux. The
// network routes every outbound message to the Mux of the addressed peer and
// logs the delivery for later verification.
//
//	net := simnet.New()
//	alice := net.Join("alice@example.com/desk")
//	bob := net.Join("bob@example.com/phone")
//
// # Fault Injection
//
// A DropFilter loses selected messages in transit, which is how tests
// produce timeouts and lost replies:
//
//	net.SetDropFilter(func(msg *stanza.Message) bool {
//	    return msg.Type == stanza.TypeResult
//	})
//
// # Delivery Modes
//
// Delivery is synchronous by default. SetAsync(true) delivers each message
// on its own goroutine; Wait blocks until all of them are done.
//
// Nothing in this package touches a real network connection.
package simnet
