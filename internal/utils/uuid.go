package utils

import "github.com/google/uuid"

// UUIDGenerator issues identifiers for vaults and shares.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a time-ordered UUIDv7, falling back to v4.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// GenerateOpaque returns a random UUIDv4. Used where the id is public and
// must not leak creation time, like share links.
func (g *UUIDGenerator) GenerateOpaque() string {
	return uuid.NewString()
}
