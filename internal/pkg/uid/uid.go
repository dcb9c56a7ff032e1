package uid

// NumberID generates int64 identifiers for database entities.
type NumberID interface {
	// Generate returns a new unique int64 ID.
	Generate() int64
}

// StringID generates string identifiers (correlation IDs, tokens).
type StringID interface {
	// Generate returns a new unique string ID.
	Generate() string
}
