// Package clock abstracts the time source. Code paths that reason about
// expiry depend on Clocker so tests can pin the current time.
package clock

import "time"

// Clocker supplies the current time.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock.
type TimeClocker struct{}

// New returns the system-clock implementation.
func New() *TimeClocker {
	return &TimeClocker{}
}

func (*TimeClocker) Now() time.Time {
	return time.Now()
}
