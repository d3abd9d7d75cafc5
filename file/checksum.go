package file

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// ChecksumAlgorithm names a file hash as it appears in offers.
type ChecksumAlgorithm string

const (
	// ChecksumMD5 is the protocol's default file hash.
	ChecksumMD5 ChecksumAlgorithm = "md5"
	// ChecksumSHA256 is SHA-256.
	ChecksumSHA256 ChecksumAlgorithm = "sha-256"
	// ChecksumBLAKE2b256 is BLAKE2b with a 256-bit digest.
	ChecksumBLAKE2b256 ChecksumAlgorithm = "blake2b-256"
	// ChecksumNone disables hashing.
	ChecksumNone ChecksumAlgorithm = "none"
)

// ParseChecksumAlgorithm maps a configuration value to an algorithm. The
// empty string selects ChecksumMD5.
func ParseChecksumAlgorithm(s string) (ChecksumAlgorithm, error) {
	switch ChecksumAlgorithm(s) {
	case "":
		return ChecksumMD5, nil
	case ChecksumMD5, ChecksumSHA256, ChecksumBLAKE2b256, ChecksumNone:
		return ChecksumAlgorithm(s), nil
	default:
		return "", fmt.Errorf("unknown checksum algorithm %q", s)
	}
}

// NewHash returns a fresh hash for the algorithm.
func (a ChecksumAlgorithm) NewHash() (hash.Hash, error) {
	switch a {
	case ChecksumMD5, "":
		return md5.New(), nil
	case ChecksumSHA256:
		return sha256.New(), nil
	case ChecksumBLAKE2b256:
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("no hash for checksum algorithm %q", a)
	}
}

// Checksum hashes everything read from r and returns the hex digest.
func Checksum(r io.Reader, alg ChecksumAlgorithm) (string, error) {
	h, err := alg.NewHash()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("%w: checksum: %w", ErrSourceIO, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
