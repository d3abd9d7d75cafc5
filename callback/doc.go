// Package callback implements a priority-ordered chain of message handlers.
//
// A Registry holds (priority, reference, handler) entries. Dispatch offers a
// message to each handler in turn and stops at the first handler that claims
// it by returning true.
//
// # Ordering
//
// Entries run in ascending priority order: a handler registered with priority
// 5 runs before one registered with priority 10. Handlers that share a
// priority run in the order they were added.
//
//	reg := callback.New[*stanza.Message]("iq")
//	h := reg.Add(150, "file-transfer", func(msg *stanza.Message) bool {
//	    return msg.SI != nil
//	})
//	claimed := reg.Dispatch(msg)
//	reg.Remove(h)
//
// # Fault isolation
//
// A handler that panics is recovered and treated as not having claimed the
// message. The panic is logged and the next handler runs, so one faulty
// handler cannot stop unrelated traffic.
//
// # Concurrency
//
// Add, Remove and Dispatch are safe for concurrent use. Dispatch walks an
// immutable snapshot of the chain, so handlers may add or remove entries
// (including themselves) while a dispatch is in progress; the change takes
// effect from the next dispatch.
package callback
