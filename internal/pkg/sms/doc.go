// Package sms defines the contracts for sending SMS messages.
//
// Use cases work with the SMS interface and Message payload; the concrete
// delivery mechanism (the provider panel's HTTP API, or a log sink during
// development) is implemented elsewhere in this package.
package sms
