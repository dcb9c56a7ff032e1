package hash

// Hash abstracts hashing and verifying a secret string.
type Hash interface {
	// Hash derives a hash from the plaintext.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the stored hash.
	Verify(hashed, plaintext string) bool
}
