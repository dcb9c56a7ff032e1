package messaging

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// nsqMessage adapts a *nsq.Message. NSQ has no headers or keys, so those
// accessors return nil.
type nsqMessage struct {
	topic string
	src   *nsq.Message

	responded atomic.Bool
}

func newNSQMessage(topic string, msg *nsq.Message) *nsqMessage {
	return &nsqMessage{topic: topic, src: msg}
}

func (m *nsqMessage) hasResponded() bool {
	return m.responded.Load()
}

// respond runs fn exactly once; later Ack or Nack calls become no-ops.
func (m *nsqMessage) respond(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.responded.Swap(true) {
		fn()
	}
	return nil
}

func (m *nsqMessage) Ack(ctx context.Context) error {
	return m.respond(ctx, m.src.Finish)
}

func (m *nsqMessage) Nack(ctx context.Context) error {
	return m.respond(ctx, func() { m.src.Requeue(0) })
}

// Extend touches the message so nsqd resets its in-flight timeout.
func (m *nsqMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.src.Touch()
	return nil
}

func (m *nsqMessage) Body() []byte                  { return m.src.Body }
func (m *nsqMessage) Key() []byte                   { return nil }
func (m *nsqMessage) Headers() []Header             { return nil }
func (m *nsqMessage) Attributes() map[string]string { return nil }
func (m *nsqMessage) ID() string                    { return fmt.Sprintf("%x", m.src.ID) }
func (m *nsqMessage) Topic() string                 { return m.topic }
func (m *nsqMessage) Subject() string               { return "" }
func (m *nsqMessage) Timestamp() time.Time          { return time.Unix(0, m.src.Timestamp) }

func (m *nsqMessage) Metadata() map[string]any {
	return map[string]any{
		"attempts":      m.src.Attempts,
		"nsqd_address":  m.src.NSQDAddress,
		"raw_timestamp": m.src.Timestamp,
	}
}

func (m *nsqMessage) Raw() any { return m.src }
