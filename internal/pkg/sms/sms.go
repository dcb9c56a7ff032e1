package sms

import (
	"context"
	"io"
)

// Message represents an SMS payload.
type Message struct {
	// To is the recipient mobile number in canonical local form.
	To string
	// Body is the message text.
	Body string
}

// SMS abstracts an SMS provider.
type SMS interface {
	io.Closer
	// Send dispatches the message and returns the provider's delivery
	// reference. The reference is only useful for support lookups; callers
	// must not treat it as a delivery guarantee.
	Send(ctx context.Context, msg Message) (string, error)
}
