package utils

import "github.com/google/uuid"

// UUIDGenerator produces the identifiers used for handshakes and capsule
// attachments. UUIDv7 keeps ids time-sortable, which makes handshake lists
// read in creation order.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a fresh UUIDv7, falling back to a random v4 when the
// clock-based generator fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
