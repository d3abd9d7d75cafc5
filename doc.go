// Package filexfer negotiates peer-to-peer file transfers over a
// request/response messaging stream, using stream initiation: before any
// bytes move, the two peers agree on a byte-stream transport and, for
// resumed transfers, on the byte range to send.
//
// # Architecture
//
// The package sits on top of a stanza.Stream (see package stanza) and below
// the byte-stream transports, which it only reaches through a
// transport.Factory:
//
//	application
//	    |  Offer / AddIncomingCallback / Accept / Decline
//	FileTransfer
//	    |  stanza.Stream: Send, SendAndAwait, AddHandler
//	stanza.Mux  <->  host messaging connection
//
// # Sending a File
//
//	ft, err := filexfer.New(mux, filexfer.NewOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src, err := file.OpenFileSource("holiday.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer src.Close()
//
//	outcome, err := ft.Offer(ctx, "bob@example.com/phone", src, "photos")
//	switch {
//	case err != nil:
//	    log.Printf("offer failed: %v", err)
//	case outcome.Declined():
//	    log.Print("bob said no")
//	default:
//	    // Copy outcome.Reader into the stream behind outcome.Handle.
//	}
//
// A decline is an outcome, not an error. Errors wrap the sentinels in this
// package; use errors.Is to tell a timeout from a protocol violation.
//
// # Receiving a File
//
// Incoming offers are routed through a priority-ordered callback chain.
// Lower priority numbers run first and the first callback returning true
// claims the offer. Unclaimed offers are declined.
//
//	ft.AddIncomingCallback(0, "downloads", func(in *filexfer.IncomingOffer) bool {
//	    go func() {
//	        // Resume a partial download from byte 4096.
//	        handle, err := ft.Accept(in, &stanza.Range{Offset: stanza.Uint64(4096)})
//	        ...
//	    }()
//	    return true
//	})
//
// # Transport Preference
//
// The responder chooses. It walks its own enabled methods in preference
// order (SOCKS5 bytestreams, then in-band bytestreams, then any
// Options.ExtraMethods) and picks the first the initiator offered.
//
// # Withdrawal
//
// Cancelling the context passed to Offer sends the peer a best-effort
// withdrawal. The responder drops the pending offer, answers later Accept
// calls with ErrOfferWithdrawn, and runs the OnWithdrawn callback.
package filexfer
