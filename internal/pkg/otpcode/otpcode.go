package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of digits in a generated code.
const Length = 5

// Generator produces one-time codes. Implementations must be safe for
// concurrent use.
type Generator interface {
	Generate() (string, error)
}

// Numeric generates uniform random codes of exactly Length digits,
// zero-padded, so every value from "00000" through "99999" is reachable.
type Numeric struct{}

// NewNumeric returns a Numeric generator backed by crypto/rand.
func NewNumeric() *Numeric {
	return &Numeric{}
}

var numericSpan = big.NewInt(100000) // 10^Length

// Generate returns a random 5-digit code as an ASCII string.
func (*Numeric) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, numericSpan)
	if err != nil {
		return "", fmt.Errorf("otpcode: read random: %w", err)
	}
	return fmt.Sprintf("%05d", n.Int64()), nil
}
