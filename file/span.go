package file

import (
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/filexfer/stanza"
	"github.com/sirupsen/logrus"
)

// Span is a validated byte range of a file.
type Span struct {
	Offset uint64
	Length uint64
}

// End returns the offset one past the last byte of the span.
func (s Span) End() uint64 {
	return s.Offset + s.Length
}

// Covers reports whether the span is the whole of a file of the given size.
func (s Span) Covers(size uint64) bool {
	return s.Offset == 0 && s.Length == size
}

// ResolveSpan turns an optional range into a concrete span of a file of the
// given size. An absent offset means zero; an absent length means the rest
// of the file. Ranges that do not fit return ErrRangeOutOfBounds.
func ResolveSpan(size uint64, r *stanza.Range) (Span, error) {
	span := Span{Length: size}
	if r == nil {
		return span, nil
	}

	if r.Offset != nil {
		if *r.Offset > size {
			return Span{}, fmt.Errorf("%w: offset %d beyond size %d", ErrRangeOutOfBounds, *r.Offset, size)
		}
		span.Offset = *r.Offset
	}
	span.Length = size - span.Offset

	if r.Length != nil {
		// Compared against the remainder so offset+length cannot overflow.
		if *r.Length > span.Length {
			return Span{}, fmt.Errorf("%w: offset %d length %d beyond size %d",
				ErrRangeOutOfBounds, span.Offset, *r.Length, size)
		}
		span.Length = *r.Length
	}
	return span, nil
}

// ApplySpan positions src at the span and returns the reader the transfer
// should copy from.
//
// Rangeable sources are seeked and capped, and returned as is. Other sources
// have the first span.Offset bytes read and discarded, and are wrapped in a
// reader capped at span.Length. A source that ends before the offset yields
// ErrSourceIO wrapping io.ErrUnexpectedEOF.
func ApplySpan(src Source, span Span) (io.Reader, error) {
	if rs, ok := src.(RangeableSource); ok && rs.SupportsRange() {
		if err := rs.SeekTo(span.Offset); err != nil {
			if errors.Is(err, ErrRangeOutOfBounds) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: seek to %d: %w", ErrSourceIO, span.Offset, err)
		}
		rs.SetLength(span.Length)
		return rs, nil
	}

	if span.Offset > 0 {
		n, err := io.CopyN(io.Discard, src, int64(span.Offset))
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			logrus.WithFields(logrus.Fields{
				"function":  "ApplySpan",
				"offset":    span.Offset,
				"discarded": n,
				"error":     err.Error(),
			}).Error("Failed to skip to range offset")
			return nil, fmt.Errorf("%w: discarded %d of %d bytes: %w", ErrSourceIO, n, span.Offset, err)
		}
	}
	return io.LimitReader(src, int64(span.Length)), nil
}
