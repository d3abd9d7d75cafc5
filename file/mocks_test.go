package file

import (
	"errors"
	"io"
)

// shortReader returns data then fails with err instead of io.EOF.
type shortReader struct {
	data []byte
	err  error
}

func (r *shortReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

// failingSeekSource claims range support but cannot seek.
type failingSeekSource struct {
	ReaderSource
}

func (s *failingSeekSource) SeekTo(uint64) error { return errors.New("seek failed") }
func (s *failingSeekSource) SetLength(uint64)    {}
func (s *failingSeekSource) SupportsRange() bool { return true }

// disabledRangeSource implements RangeableSource but reports no support.
type disabledRangeSource struct {
	ReaderSource
	seeked bool
}

func (s *disabledRangeSource) SeekTo(uint64) error { s.seeked = true; return nil }
func (s *disabledRangeSource) SetLength(uint64)    {}
func (s *disabledRangeSource) SupportsRange() bool { return false }
