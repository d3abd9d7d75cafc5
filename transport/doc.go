// Package transport identifies the byte-stream transports a file transfer
// can run over, picks one during negotiation, and hands the result to the
// code that actually moves the bytes.
//
// # Methods
//
// A Method is a protocol namespace. Two are built in:
//
//	transport.MethodBytestreams // SOCKS5 bytestreams
//	transport.MethodIBB         // in-band bytestreams
//
// # Selection
//
// Select is pure and deterministic: the responder walks its own enabled list
// in preference order and takes the first method the initiator offered.
//
//	m, ok := transport.Select(offered, []transport.Method{
//	    transport.MethodBytestreams,
//	    transport.MethodIBB,
//	})
//
// # Handles
//
// Once negotiation settles, a Factory turns the Binding (session ID, both
// identities, role and method) into a Handle. BindingFactory returns a handle
// that carries only the binding; MethodFactory routes each method to its own
// factory so hosts can plug in real SOCKS5 and IBB implementations.
package transport
