package sms

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Log is an SMS implementation that only writes the message to the logger.
// It is meant for development and test environments without a panel account.
type Log struct {
	logger *slog.Logger
}

// NewLog constructs a Log sender.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Send logs the message and returns a synthetic delivery reference.
func (l *Log) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	l.logger.InfoContext(ctx, "sms delivered to log sink",
		slog.String("to", msg.To),
		slog.String("body", msg.Body),
		slog.String("delivery_id", id),
	)
	return id, nil
}

// Close implements io.Closer for interface compatibility.
func (l *Log) Close() error {
	return nil
}
