package stanza

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates no reply arrived within the request timeout.
	ErrTimeout = errors.New("stanza: request timed out")

	// ErrPendingID indicates a request reused a correlation ID that is
	// already waiting for a reply.
	ErrPendingID = errors.New("stanza: correlation id already pending")

	// ErrMissingID indicates a request without a correlation ID was passed
	// to SendAndAwait.
	ErrMissingID = errors.New("stanza: request has no correlation id")
)

// ErrorType tells the requester how to react to an error reply.
type ErrorType string

const (
	ErrorTypeCancel   ErrorType = "cancel"
	ErrorTypeModify   ErrorType = "modify"
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeWait     ErrorType = "wait"
	ErrorTypeContinue ErrorType = "continue"
)

// Condition is the defined error condition of an error reply.
type Condition string

const (
	ConditionBadRequest            Condition = "bad-request"
	ConditionForbidden             Condition = "forbidden"
	ConditionFeatureNotImplemented Condition = "feature-not-implemented"
	ConditionItemNotFound          Condition = "item-not-found"
	ConditionNotAcceptable         Condition = "not-acceptable"
	ConditionServiceUnavailable    Condition = "service-unavailable"
	ConditionUndefined             Condition = "undefined-condition"
)

// Application-specific conditions carried alongside a defined condition.
const (
	// AppConditionNoValidStreams signals that none of the offered stream
	// methods is acceptable to the responder.
	AppConditionNoValidStreams = "no-valid-streams"
	// AppConditionBadProfile signals an unsupported SI profile.
	AppConditionBadProfile = "bad-profile"
)

// Error is the error payload of a TypeError message.
type Error struct {
	Type         ErrorType
	Condition    Condition
	Text         string
	AppCondition string
}

// legacyCodes maps defined conditions to the numeric codes older peers use.
var legacyCodes = map[Condition]int{
	ConditionBadRequest:            400,
	ConditionForbidden:             403,
	ConditionItemNotFound:          404,
	ConditionNotAcceptable:         406,
	ConditionFeatureNotImplemented: 501,
	ConditionServiceUnavailable:    503,
	ConditionUndefined:             500,
}

// Code returns the legacy numeric code for the error condition, or 500 when
// the condition has no mapping.
func (e *Error) Code() int {
	if code, ok := legacyCodes[e.Condition]; ok {
		return code
	}
	return 500
}

// String renders the error for logs.
func (e *Error) String() string {
	s := string(e.Condition)
	if e.AppCondition != "" {
		s += "/" + e.AppCondition
	}
	if e.Text != "" {
		s += fmt.Sprintf(" (%s)", e.Text)
	}
	return s
}

// ReplyError is returned by SendAndAwait when the peer answered with an
// error reply.
type ReplyError struct {
	Reply *Message
}

func (e *ReplyError) Error() string {
	if e.Reply == nil || e.Reply.Error == nil {
		return "stanza: error reply"
	}
	return fmt.Sprintf("stanza: error reply from %s: %s", e.Reply.From, e.Reply.Error)
}

// Condition returns the defined condition of the reply, or
// ConditionUndefined when the reply carried no error payload.
func (e *ReplyError) Condition() Condition {
	if e.Reply == nil || e.Reply.Error == nil {
		return ConditionUndefined
	}
	return e.Reply.Error.Condition
}
