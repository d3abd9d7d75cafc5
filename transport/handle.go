package transport

import (
	"errors"
	"fmt"
	"sync"

	"github.com/opd-ai/filexfer/stanza"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedMethod is returned by factories asked to bind a method they
// have no byte-stream implementation for.
var ErrUnsupportedMethod = errors.New("transport: unsupported method")

// Role is a party's side of a negotiated byte stream.
type Role int

const (
	// RoleInitiator offered the file and sends the bytes.
	RoleInitiator Role = iota
	// RoleTarget accepted the offer and receives the bytes.
	RoleTarget
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleTarget:
		return "target"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Binding carries everything a byte-stream implementation needs to open the
// stream that a negotiation agreed on.
type Binding struct {
	SessionID string
	Local     stanza.JID
	Peer      stanza.JID
	Role      Role
	Method    Method
}

// Validate checks that the binding is complete.
func (b Binding) Validate() error {
	switch {
	case b.SessionID == "":
		return errors.New("transport: binding has no session id")
	case b.Local == "" || b.Peer == "":
		return errors.New("transport: binding needs local and peer identities")
	case b.Method == "":
		return errors.New("transport: binding has no method")
	}
	return nil
}

// Handle is a negotiated, not yet opened byte stream. Opening and moving
// data is the job of the concrete transport behind it.
type Handle interface {
	Binding() Binding
}

// Factory builds handles for negotiated sessions.
type Factory interface {
	NewHandle(b Binding) (Handle, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(b Binding) (Handle, error)

// NewHandle implements Factory.
func (f FactoryFunc) NewHandle(b Binding) (Handle, error) {
	return f(b)
}

// BoundHandle is a Handle that only records its binding. Hosts that wire the
// byte streams themselves read the binding and open the stream.
type BoundHandle struct {
	binding Binding
}

// Binding implements Handle.
func (h *BoundHandle) Binding() Binding {
	return h.binding
}

// BindingFactory produces BoundHandles for any valid binding.
type BindingFactory struct{}

// NewHandle implements Factory.
func (BindingFactory) NewHandle(b Binding) (Handle, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &BoundHandle{binding: b}, nil
}

// MethodFactory dispatches to a per-method factory. Methods without a
// registered factory fail with ErrUnsupportedMethod.
type MethodFactory struct {
	mu        sync.RWMutex
	factories map[Method]Factory
}

// NewMethodFactory creates an empty MethodFactory.
func NewMethodFactory() *MethodFactory {
	return &MethodFactory{factories: make(map[Method]Factory)}
}

// Register installs f for method m, replacing any previous factory.
func (mf *MethodFactory) Register(m Method, f Factory) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.factories[m] = f
}

// Methods returns the methods with a registered factory.
func (mf *MethodFactory) Methods() []Method {
	mf.mu.RLock()
	defer mf.mu.RUnlock()
	out := make([]Method, 0, len(mf.factories))
	for m := range mf.factories {
		out = append(out, m)
	}
	return out
}

// NewHandle implements Factory.
func (mf *MethodFactory) NewHandle(b Binding) (Handle, error) {
	mf.mu.RLock()
	f, ok := mf.factories[b.Method]
	mf.mu.RUnlock()

	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "MethodFactory.NewHandle",
			"method":   b.Method.String(),
			"session":  b.SessionID,
		}).Warn("No transport registered for method")
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, b.Method)
	}
	return f.NewHandle(b)
}
