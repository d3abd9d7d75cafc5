package stanza

import (
	"time"
)

// JID identifies a peer on the messaging network. It is treated as opaque.
type JID string

// String returns the JID as a plain string.
func (j JID) String() string {
	return string(j)
}

// Type classifies a control message.
type Type string

const (
	// TypeGet requests information from the peer.
	TypeGet Type = "get"
	// TypeSet asks the peer to act on the payload.
	TypeSet Type = "set"
	// TypeResult answers a get or set successfully.
	TypeResult Type = "result"
	// TypeError answers a get or set with an error.
	TypeError Type = "error"
)

// IsRequest reports whether t expects a reply.
func (t Type) IsRequest() bool {
	return t == TypeGet || t == TypeSet
}

// IsResponse reports whether t answers a request.
func (t Type) IsResponse() bool {
	return t == TypeResult || t == TypeError
}

// Namespaces and profile identifiers used by stream initiation.
const (
	NSSI                = "http://jabber.org/protocol/si"
	NSFeatureNeg        = "http://jabber.org/protocol/feature-neg"
	ProfileFileTransfer = "http://jabber.org/protocol/si/profile/file-transfer"
	FieldStreamMethod   = "stream-method"
	DefaultMimeType     = "application/octet-stream"
)

// Message is a request/response control message. Its serialization belongs
// to the host stack; this package only models the fields negotiation needs.
// ID is the correlation token linking a request to its reply.
type Message struct {
	Type Type
	ID   string
	From JID
	To   JID

	SI     *SI
	Error  *Error
	Expire *Expire
}

// SI is the stream-initiation payload of a message.
type SI struct {
	ID       string // negotiation session ID
	Profile  string
	MimeType string
	File     *File
	Feature  *FeatureForm
	Withdraw bool // initiator abandoned the offer
}

// File describes the offered file, or carries the granted range in a reply.
type File struct {
	Name          string
	Size          uint64
	Hash          string
	HashAlgorithm string
	Date          *time.Time
	Description   string

	// Range is non-nil in an offer when the initiator supports ranged
	// transfers, and in a reply when the responder requests one.
	Range *Range
}

// Range is an optional offset/length pair. A nil field means "from the
// start" for Offset and "to the end" for Length.
type Range struct {
	Offset *uint64
	Length *uint64
}

// IsZero reports whether neither offset nor length is set.
func (r *Range) IsZero() bool {
	return r == nil || (r.Offset == nil && r.Length == nil)
}

// FormType is the data-form type of a feature negotiation form.
type FormType string

const (
	// FormTypeForm offers options to choose from.
	FormTypeForm FormType = "form"
	// FormTypeSubmit carries the chosen values.
	FormTypeSubmit FormType = "submit"
)

// FeatureForm is the stream-method feature negotiation form. In an offer
// StreamMethods lists the options; in a reply it holds the chosen value.
type FeatureForm struct {
	Type          FormType
	StreamMethods []string
}

// Uint64 returns a pointer to v, for filling optional Range fields.
func Uint64(v uint64) *uint64 {
	return &v
}

// Answer returns a reply skeleton addressed back to the sender of m,
// carrying the same correlation ID.
func (m *Message) Answer(t Type) *Message {
	return &Message{
		Type: t,
		ID:   m.ID,
		From: m.To,
		To:   m.From,
	}
}

// ErrorAnswer returns an error reply to m.
func (m *Message) ErrorAnswer(errType ErrorType, cond Condition, text string) *Message {
	reply := m.Answer(TypeError)
	reply.Error = &Error{Type: errType, Condition: cond, Text: text}
	return reply
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.SI != nil {
		si := *m.SI
		if m.SI.File != nil {
			f := *m.SI.File
			if f.Date != nil {
				d := *f.Date
				f.Date = &d
			}
			if f.Range != nil {
				r := Range{}
				if f.Range.Offset != nil {
					r.Offset = Uint64(*f.Range.Offset)
				}
				if f.Range.Length != nil {
					r.Length = Uint64(*f.Range.Length)
				}
				f.Range = &r
			}
			si.File = &f
		}
		if m.SI.Feature != nil {
			ff := *m.SI.Feature
			ff.StreamMethods = append([]string(nil), m.SI.Feature.StreamMethods...)
			si.Feature = &ff
		}
		c.SI = &si
	}
	if m.Error != nil {
		e := *m.Error
		c.Error = &e
	}
	if m.Expire != nil {
		x := *m.Expire
		c.Expire = &x
	}
	return &c
}
