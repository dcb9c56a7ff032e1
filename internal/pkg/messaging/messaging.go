package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported reports a capability the selected broker does not have,
// such as delayed delivery.
var ErrUnsupported = errors.New("pkgmessage: unsupported operation")

// Messaging publishes and consumes through whichever driver was selected
// at startup.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher sends messages to a destination (topic, subject, or queue,
// depending on the driver).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer attaches a handler to a source and keeps delivering until the
// context is canceled.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one delivery. What a returned error means (requeue,
// drop, leave unacked) is up to the driver and the auto-ack setting.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is the driver-neutral publish payload. Most fields only
// matter to some drivers; drivers ignore what they cannot express.
type OutgoingMessage struct {
	// Body is the payload.
	Body []byte

	// Key is the partitioning key (Kafka).
	Key []byte

	// Headers carry binary values and allow duplicate keys.
	Headers []Header

	// Attributes are string attributes (Pub/Sub).
	Attributes map[string]string

	// OrderingKey groups ordered deliveries (Pub/Sub).
	OrderingKey string

	// Delay defers delivery where the broker supports it.
	Delay time.Duration

	// Metadata carries driver-specific publish settings.
	Metadata map[string]any
}

// Header is one message header entry.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult reports what the broker assigned to an accepted message.
// Drivers fill only the fields they have.
type PublishResult struct {
	// MessageID is the broker-assigned ID.
	MessageID string

	// Topic, Partition, and Offset locate the message on Kafka-like
	// brokers.
	Topic     string
	Partition int32
	Offset    int64

	// Sequence is the JetStream stream sequence.
	Sequence uint64

	// Timestamp is when the broker accepted the message.
	Timestamp time.Time

	// Raw holds the driver's native publish result when exposed.
	Raw any
}

// Message is one received delivery.
type Message interface {
	// Body returns the payload.
	Body() []byte
	// Key returns the partitioning key, when the broker has one.
	Key() []byte
	// Headers returns the message headers.
	Headers() []Header
	// Attributes returns broker string attributes.
	Attributes() map[string]string

	// ID returns the broker message ID.
	ID() string
	// Topic returns the topic name when applicable.
	Topic() string
	// Subject returns the subject name when applicable.
	Subject() string
	// Timestamp returns the broker timestamp.
	Timestamp() time.Time

	// Ack marks the delivery as processed.
	Ack(ctx context.Context) error
}

// Nackable is implemented by deliveries that can ask for redelivery.
type Nackable interface {
	Nack(ctx context.Context) error
}

// Extendable is implemented by deliveries whose ack deadline can be
// pushed out.
type Extendable interface {
	Extend(ctx context.Context, d time.Duration) error
}

// MetadataCarrier exposes driver-specific delivery metadata.
type MetadataCarrier interface {
	Metadata() map[string]any
}

// RawCarrier exposes the driver's native message type.
type RawCarrier interface {
	Raw() any
}
