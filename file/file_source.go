package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

// SourceOption configures FileSource and BytesSource.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	name      string
	mimeType  string
	algorithm ChecksumAlgorithm
}

// WithName overrides the advertised file name.
func WithName(name string) SourceOption {
	return func(o *sourceOptions) { o.name = name }
}

// WithMimeType overrides MIME detection.
func WithMimeType(mimeType string) SourceOption {
	return func(o *sourceOptions) { o.mimeType = mimeType }
}

// WithChecksumAlgorithm selects the hash advertised with the file.
func WithChecksumAlgorithm(alg ChecksumAlgorithm) SourceOption {
	return func(o *sourceOptions) { o.algorithm = alg }
}

func applySourceOptions(opts []SourceOption) sourceOptions {
	o := sourceOptions{algorithm: ChecksumMD5}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FileSource serves a file on disk. It supports ranged reads; the checksum is
// computed on first use from an independent section reader, so it never
// disturbs the read position.
type FileSource struct {
	mu       sync.Mutex
	f        *os.File
	meta     Metadata
	ranged   ranged
	hashDone bool
	hashErr  error
	closed   bool
}

// OpenFileSource opens path for offering.
func OpenFileSource(path string, opts ...SourceOption) (*FileSource, error) {
	cleaned, err := ValidatePath(path)
	if err != nil {
		return nil, err
	}
	o := applySourceOptions(opts)

	f, err := os.Open(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSourceIO, cleaned, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", ErrSourceIO, cleaned, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceIO, cleaned)
	}

	modTime := info.ModTime().UTC()
	meta := Metadata{
		Name:              filepath.Base(cleaned),
		MimeType:          o.mimeType,
		Size:              uint64(info.Size()),
		ChecksumAlgorithm: o.algorithm,
		ModTime:           &modTime,
	}
	if o.name != "" {
		meta.Name = o.name
	}
	if meta.MimeType == "" {
		meta.MimeType = detectFileMime(cleaned)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "OpenFileSource",
		"path":      cleaned,
		"size":      meta.Size,
		"mime_type": meta.MimeType,
	}).Debug("Opened file source")

	return &FileSource{
		f:        f,
		meta:     meta,
		ranged:   newRanged(f, meta.Size),
		hashDone: o.algorithm == ChecksumNone,
	}, nil
}

func detectFileMime(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "detectFileMime",
			"path":     path,
			"error":    err.Error(),
		}).Debug("MIME detection failed, using default")
		return ""
	}
	return mtype.String()
}

// Metadata implements Source.
func (s *FileSource) Metadata() (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Metadata{}, ErrSourceClosed
	}
	if !s.hashDone {
		sum, err := Checksum(io.NewSectionReader(s.f, 0, int64(s.meta.Size)), s.meta.ChecksumAlgorithm)
		s.meta.Checksum, s.hashErr, s.hashDone = sum, err, true
	}
	if s.hashErr != nil {
		return Metadata{}, s.hashErr
	}
	return s.meta, nil
}

// Read implements io.Reader, honouring any length set with SetLength.
func (s *FileSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSourceClosed
	}
	return s.ranged.read(p)
}

// SeekTo implements RangeableSource.
func (s *FileSource) SeekTo(offset uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSourceClosed
	}
	return s.ranged.seekTo(offset)
}

// SetLength implements RangeableSource.
func (s *FileSource) SetLength(length uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranged.setLength(length)
}

// SupportsRange implements RangeableSource.
func (s *FileSource) SupportsRange() bool {
	return true
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}
