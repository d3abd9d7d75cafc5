package file

import (
	"bytes"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// BytesSource serves an in-memory buffer with range support.
type BytesSource struct {
	mu     sync.Mutex
	meta   Metadata
	ranged ranged
}

// NewBytesSource creates a source over data. The MIME type is detected from
// the content unless WithMimeType is given.
func NewBytesSource(name string, data []byte, opts ...SourceOption) (*BytesSource, error) {
	o := applySourceOptions(opts)
	if o.name != "" {
		name = o.name
	}

	now := time.Now().UTC()
	meta := Metadata{
		Name:              name,
		MimeType:          o.mimeType,
		Size:              uint64(len(data)),
		ChecksumAlgorithm: o.algorithm,
		ModTime:           &now,
	}
	if meta.MimeType == "" {
		meta.MimeType = mimetype.Detect(data).String()
	}
	if o.algorithm != ChecksumNone {
		sum, err := Checksum(bytes.NewReader(data), o.algorithm)
		if err != nil {
			return nil, err
		}
		meta.Checksum = sum
	}

	return &BytesSource{
		meta:   meta,
		ranged: newRanged(bytes.NewReader(data), meta.Size),
	}, nil
}

// Metadata implements Source.
func (s *BytesSource) Metadata() (Metadata, error) {
	return s.meta, nil
}

// Read implements io.Reader.
func (s *BytesSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranged.read(p)
}

// SeekTo implements RangeableSource.
func (s *BytesSource) SeekTo(offset uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranged.seekTo(offset)
}

// SetLength implements RangeableSource.
func (s *BytesSource) SetLength(length uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranged.setLength(length)
}

// SupportsRange implements RangeableSource.
func (s *BytesSource) SupportsRange() bool {
	return true
}
