package messaging

import (
	"context"
	"sync/atomic"
	"time"

	"cloud.google.com/go/pubsub/v2"
)

// pubSubMessage adapts a *pubsub.Message. Attributes map straight
// through; Pub/Sub has no binary headers or keys.
type pubSubMessage struct {
	topicID string
	subID   string
	src     *pubsub.Message

	responded atomic.Bool
}

func newPubSubMessage(topic, subscription string, msg *pubsub.Message) *pubSubMessage {
	return &pubSubMessage{topicID: topic, subID: subscription, src: msg}
}

func (m *pubSubMessage) hasResponded() bool {
	return m.responded.Load()
}

// respond runs fn exactly once; later Ack or Nack calls become no-ops.
func (m *pubSubMessage) respond(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.responded.Swap(true) {
		fn()
	}
	return nil
}

func (m *pubSubMessage) Ack(ctx context.Context) error {
	return m.respond(ctx, m.src.Ack)
}

func (m *pubSubMessage) Nack(ctx context.Context) error {
	return m.respond(ctx, m.src.Nack)
}

func (m *pubSubMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrUnsupported
}

func (m *pubSubMessage) Body() []byte                  { return m.src.Data }
func (m *pubSubMessage) Key() []byte                   { return nil }
func (m *pubSubMessage) Headers() []Header             { return nil }
func (m *pubSubMessage) Attributes() map[string]string { return m.src.Attributes }
func (m *pubSubMessage) ID() string                    { return m.src.ID }
func (m *pubSubMessage) Topic() string                 { return m.topicID }
func (m *pubSubMessage) Subject() string               { return "" }
func (m *pubSubMessage) Timestamp() time.Time          { return m.src.PublishTime }

func (m *pubSubMessage) Metadata() map[string]any {
	meta := map[string]any{
		"topic":        m.topicID,
		"subscription": m.subID,
		"ordering_key": m.src.OrderingKey,
	}
	if m.src.DeliveryAttempt != nil {
		meta["delivery_attempt"] = *m.src.DeliveryAttempt
	}
	return meta
}

func (m *pubSubMessage) Raw() any { return m.src }
