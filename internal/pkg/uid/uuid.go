package uid

import "github.com/google/uuid"

// UUID produces UUID strings, preferring the time-ordered v7 form so the
// values sort roughly by creation time.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a UUIDv7 string, falling back to v4 when the random
// source misbehaves.
func (u *UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
