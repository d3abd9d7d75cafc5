// Package limits provides centralized size limits for file-transfer offer
// metadata. Offers arrive from untrusted peers, so every string field is
// bounded before it reaches application callbacks.
package limits

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MaxFileNameLength is the maximum file name length in bytes.
	// 255 matches common filesystem limits.
	MaxFileNameLength = 255

	// MaxDescriptionLength bounds the free-text description of an offer.
	MaxDescriptionLength = 4096

	// MaxMimeTypeLength bounds the declared MIME type.
	MaxMimeTypeLength = 255

	// MaxSessionIDLength bounds the negotiation session ID.
	MaxSessionIDLength = 256

	// MaxStreamMethods is the most stream methods a single offer may list.
	MaxStreamMethods = 32

	// MaxStreamMethodLength bounds a single stream-method namespace.
	MaxStreamMethodLength = 1024
)

var (
	// ErrFieldEmpty indicates a required field was empty.
	ErrFieldEmpty = errors.New("field empty")

	// ErrFieldTooLong indicates a field exceeds its maximum length.
	ErrFieldTooLong = errors.New("field too long")

	// ErrInvalidEncoding indicates a field is not valid UTF-8.
	ErrInvalidEncoding = errors.New("field is not valid utf-8")

	// ErrTooManyItems indicates a list exceeds its maximum item count.
	ErrTooManyItems = errors.New("too many items")
)

// ValidateFieldLength checks a named string field against maxLen bytes.
// Empty values pass; use ValidateRequired for mandatory fields.
func ValidateFieldLength(field, value string, maxLen int) error {
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s length %d exceeds limit %d", ErrFieldTooLong, field, len(value), maxLen)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: %s", ErrInvalidEncoding, field)
	}
	return nil
}

// ValidateRequired checks a mandatory field is non-empty and within maxLen.
func ValidateRequired(field, value string, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrFieldEmpty, field)
	}
	return ValidateFieldLength(field, value, maxLen)
}

// ValidateFileName validates an offered file name against MaxFileNameLength.
func ValidateFileName(name string) error {
	return ValidateRequired("file name", name, MaxFileNameLength)
}

// ValidateDescription validates an offer description against
// MaxDescriptionLength. An empty description is allowed.
func ValidateDescription(desc string) error {
	return ValidateFieldLength("description", desc, MaxDescriptionLength)
}

// ValidateMimeType validates a declared MIME type. An empty value is allowed
// and means the protocol default.
func ValidateMimeType(mimeType string) error {
	return ValidateFieldLength("mime type", mimeType, MaxMimeTypeLength)
}

// ValidateSessionID validates a negotiation session ID.
func ValidateSessionID(id string) error {
	return ValidateRequired("session id", id, MaxSessionIDLength)
}

// ValidateStreamMethods validates the offered stream-method list. The list
// may be empty here; an empty list is a negotiation failure, not a size
// violation, and is handled by the responder.
func ValidateStreamMethods(methods []string) error {
	if len(methods) > MaxStreamMethods {
		return fmt.Errorf("%w: %d stream methods exceeds limit %d", ErrTooManyItems, len(methods), MaxStreamMethods)
	}
	for _, m := range methods {
		if err := ValidateFieldLength("stream method", m, MaxStreamMethodLength); err != nil {
			return err
		}
	}
	return nil
}
