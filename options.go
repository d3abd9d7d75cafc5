package filexfer

import (
	"fmt"
	"time"

	"github.com/opd-ai/filexfer/stanza"
	"github.com/opd-ai/filexfer/transport"
)

// DefaultStanzaPriority is where the offer handler sits in the stream's
// handler chain.
const DefaultStanzaPriority = 150

// DefaultRequestTimeout bounds how long Offer waits for the peer.
const DefaultRequestTimeout = 30 * time.Second

// Options contains negotiation configuration.
type Options struct {
	AllowBytestreams bool
	AllowIBB         bool
	// ExtraMethods are offered and accepted after the built-in methods, in
	// the order given.
	ExtraMethods []transport.Method

	RequestTimeout time.Duration
	StanzaPriority int
	// OfferExpiry attaches an advisory expiry to outgoing offers when > 0.
	OfferExpiry time.Duration

	IDs     stanza.IDGenerator
	Factory transport.Factory
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		AllowBytestreams: true,
		AllowIBB:         true,
		RequestTimeout:   DefaultRequestTimeout,
		StanzaPriority:   DefaultStanzaPriority,
		IDs:              stanza.UUIDGenerator{},
		Factory:          transport.BindingFactory{},
	}
}

// EnabledMethods returns the stream methods this side will offer and accept,
// most preferred first.
func (o *Options) EnabledMethods() []transport.Method {
	methods := make([]transport.Method, 0, 2+len(o.ExtraMethods))
	if o.AllowBytestreams {
		methods = append(methods, transport.MethodBytestreams)
	}
	if o.AllowIBB {
		methods = append(methods, transport.MethodIBB)
	}
	for _, m := range o.ExtraMethods {
		if m != "" && !transport.Contains(methods, m) {
			methods = append(methods, m)
		}
	}
	return methods
}

// Validate checks the options for values that can never work.
func (o *Options) Validate() error {
	if o.RequestTimeout < 0 {
		return fmt.Errorf("%w: negative request timeout %s", ErrInvalidConfig, o.RequestTimeout)
	}
	if o.OfferExpiry < 0 {
		return fmt.Errorf("%w: negative offer expiry %s", ErrInvalidConfig, o.OfferExpiry)
	}
	return nil
}

func (o *Options) withDefaults() *Options {
	c := *o
	c.ExtraMethods = append([]transport.Method(nil), o.ExtraMethods...)
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.IDs == nil {
		c.IDs = stanza.UUIDGenerator{}
	}
	if c.Factory == nil {
		c.Factory = transport.BindingFactory{}
	}
	return &c
}
