// Package hash holds the password hashing interface and its bcrypt
// implementation. Callers store only the derived hash and verify by
// re-deriving from the submitted plaintext.
package hash
