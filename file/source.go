package file

import (
	"errors"
	"io"
	"time"

	"github.com/opd-ai/filexfer/stanza"
)

var (
	// ErrSourceIO indicates the data source failed to read or seek.
	ErrSourceIO = errors.New("source i/o failure")

	// ErrRangeOutOfBounds indicates a requested range does not fit the file.
	ErrRangeOutOfBounds = errors.New("range out of bounds")

	// ErrSourceClosed indicates an operation on a closed source.
	ErrSourceClosed = errors.New("source closed")
)

// Metadata describes a file offered for transfer.
type Metadata struct {
	Name              string
	MimeType          string
	Size              uint64
	Checksum          string // hex encoded, empty when unknown
	ChecksumAlgorithm ChecksumAlgorithm
	ModTime           *time.Time
}

// MimeTypeOrDefault returns the MIME type, or application/octet-stream when
// none is set.
func (m Metadata) MimeTypeOrDefault() string {
	if m.MimeType == "" {
		return stanza.DefaultMimeType
	}
	return m.MimeType
}

// Source supplies the bytes of an offered file along with its metadata.
type Source interface {
	io.Reader
	Metadata() (Metadata, error)
}

// RangeableSource is a Source that can start at an offset and stop after a
// number of bytes without reading the skipped data.
type RangeableSource interface {
	Source
	// SeekTo positions the next Read at offset bytes from the start.
	SeekTo(offset uint64) error
	// SetLength caps the bytes returned by subsequent Reads.
	SetLength(length uint64)
	// SupportsRange reports whether SeekTo and SetLength are usable.
	SupportsRange() bool
}

// SupportsRange reports whether src can serve ranged transfers natively.
func SupportsRange(src Source) bool {
	rs, ok := src.(RangeableSource)
	return ok && rs.SupportsRange()
}

// ReaderSource wraps a sequential reader. It never supports ranges, so a
// granted offset is honoured by discarding the prefix.
type ReaderSource struct {
	r    io.Reader
	meta Metadata
}

// NewReaderSource wraps r with fixed metadata.
func NewReaderSource(r io.Reader, meta Metadata) *ReaderSource {
	return &ReaderSource{r: r, meta: meta}
}

// Read implements io.Reader.
func (s *ReaderSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Metadata implements Source.
func (s *ReaderSource) Metadata() (Metadata, error) {
	return s.meta, nil
}

// ranged caps reads from an io.ReadSeeker. It backs the rangeable sources.
type ranged struct {
	rs        io.ReadSeeker
	size      uint64
	remaining int64 // -1 when uncapped
}

func newRanged(rs io.ReadSeeker, size uint64) ranged {
	return ranged{rs: rs, size: size, remaining: -1}
}

func (r *ranged) read(p []byte) (int, error) {
	if r.remaining == 0 {
		return 0, io.EOF
	}
	if r.remaining > 0 && int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}
	n, err := r.rs.Read(p)
	if r.remaining > 0 {
		r.remaining -= int64(n)
	}
	return n, err
}

func (r *ranged) seekTo(offset uint64) error {
	if offset > r.size {
		return ErrRangeOutOfBounds
	}
	if _, err := r.rs.Seek(int64(offset), io.SeekStart); err != nil {
		return errors.Join(ErrSourceIO, err)
	}
	return nil
}

func (r *ranged) setLength(length uint64) {
	r.remaining = int64(length)
}
