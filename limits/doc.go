// Package limits provides centralized size constants and validation
// functions for file-transfer offer metadata. Both sides of a negotiation
// use it: the initiator before sending, the responder before handing an
// offer to application callbacks.
//
// # Limits
//
//   - MaxFileNameLength (255 bytes): matches common filesystem limits.
//   - MaxDescriptionLength (4096 bytes): free-text offer description.
//   - MaxMimeTypeLength (255 bytes).
//   - MaxSessionIDLength (256 bytes).
//   - MaxStreamMethods (32) and MaxStreamMethodLength (1024 bytes): the
//     stream-method list of a single offer.
//
// # Validation Functions
//
//	if err := limits.ValidateFileName(name); err != nil {
//	    // ErrFieldEmpty or ErrFieldTooLong
//	}
//
// For other fields use the generic helpers:
//
//	err := limits.ValidateFieldLength("nickname", nick, 128)
//
// # Error Types
//
//   - ErrFieldEmpty: a required field was empty
//   - ErrFieldTooLong: a field exceeds its limit
//   - ErrInvalidEncoding: a field is not valid UTF-8
//   - ErrTooManyItems: a list exceeds its item limit
//
// All errors are wrapped with the field name and sizes; match them with
// errors.Is.
package limits
