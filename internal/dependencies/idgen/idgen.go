package idgen

import "github.com/google/uuid"

// IDGenerator produces opaque unique identifiers that can be mocked for testing
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator implements IDGenerator using random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a new UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
