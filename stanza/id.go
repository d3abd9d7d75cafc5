package stanza

import "github.com/google/uuid"

// IDGenerator produces correlation and session identifiers. Generated IDs
// are opaque tokens and must never be parsed.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string {
	return f()
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
