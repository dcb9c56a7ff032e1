package messaging

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafkaMessage adapts a kafka.Message. Ack commits the offset; Nack only
// skips the commit, which leaves redelivery to the group rebalance.
type kafkaMessage struct {
	reader *kafka.Reader
	src    kafka.Message

	responded atomic.Bool
}

func newKafkaMessage(reader *kafka.Reader, msg kafka.Message) *kafkaMessage {
	return &kafkaMessage{reader: reader, src: msg}
}

func (m *kafkaMessage) hasResponded() bool {
	return m.responded.Load()
}

func (m *kafkaMessage) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.responded.Swap(true) {
		return nil
	}
	return m.reader.CommitMessages(ctx, m.src)
}

func (m *kafkaMessage) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.responded.Store(true)
	return nil
}

func (m *kafkaMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrUnsupported
}

func (m *kafkaMessage) Body() []byte { return m.src.Value }
func (m *kafkaMessage) Key() []byte  { return m.src.Key }

func (m *kafkaMessage) Headers() []Header {
	if len(m.src.Headers) == 0 {
		return nil
	}
	out := make([]Header, 0, len(m.src.Headers))
	for _, h := range m.src.Headers {
		out = append(out, Header{Key: h.Key, Value: h.Value})
	}
	return out
}

// Attributes flattens headers into a map; the first value wins on
// duplicate keys.
func (m *kafkaMessage) Attributes() map[string]string {
	if len(m.src.Headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(m.src.Headers))
	for _, h := range m.src.Headers {
		if _, ok := attrs[h.Key]; !ok {
			attrs[h.Key] = string(h.Value)
		}
	}
	return attrs
}

func (m *kafkaMessage) ID() string {
	return fmt.Sprintf("%s/%d/%d", m.src.Topic, m.src.Partition, m.src.Offset)
}

func (m *kafkaMessage) Topic() string        { return m.src.Topic }
func (m *kafkaMessage) Subject() string      { return "" }
func (m *kafkaMessage) Timestamp() time.Time { return m.src.Time }

func (m *kafkaMessage) Metadata() map[string]any {
	return map[string]any{
		"partition": m.src.Partition,
		"offset":    m.src.Offset,
		"topic":     m.src.Topic,
	}
}

func (m *kafkaMessage) Raw() any { return m.src }
