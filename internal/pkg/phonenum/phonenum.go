package phonenum

import (
	"errors"
	"strings"
)

// ErrInvalidFormat is returned when the input cannot be normalized into a
// valid local mobile number.
var ErrInvalidFormat = errors.New("invalid mobile number format")

const (
	localLength = 11 // 09xxxxxxxxx
	localPrefix = "09"
)

// Normalize converts raw user input into the canonical "09xxxxxxxxx" form.
//
// Every non-digit character is dropped, so separators, a leading "+", or
// URI prefixes like "tel:" cannot reject an otherwise valid number. The
// remaining digits have a leading "98" country code rewritten to the local
// "0"; the result must be eleven digits starting with "09".
func Normalize(raw string) (string, error) {
	s := digitsOf(raw)

	if strings.HasPrefix(s, "98") {
		s = "0" + s[2:]
	}

	if len(s) != localLength || !strings.HasPrefix(s, localPrefix) {
		return "", ErrInvalidFormat
	}

	return s, nil
}

// IsValid reports whether raw normalizes to a canonical local number.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

func digitsOf(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
