package pkguid

import "github.com/google/uuid"

// UUID mints time-ordered UUIDv7 strings. V7 keeps identifiers roughly
// sorted by creation time, which makes registry listings and log greps easier
// to follow than random v4s.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUIDv7 string.
func (u *UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
