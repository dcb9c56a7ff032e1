package sms

import (
	"context"

	"github.com/mehran-jafari/account/internal/pkg/instrument"
	smsgw "github.com/mehran-jafari/account/internal/pkg/sms"
	"go.opentelemetry.io/otel/codes"
)

type Gateway struct {
	client smsgw.SMS
	ins    instrument.Instrumentation
}

func New(client smsgw.SMS, ins instrument.Instrumentation) *Gateway {
	return &Gateway{client: client, ins: ins}
}

func (g *Gateway) Send(ctx context.Context, msg smsgw.Message) (string, error) {
	ctx, span := g.ins.Tracer("notification.outbound.sms").Start(ctx, "Send")
	defer span.End()

	deliveryID, err := g.client.Send(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return deliveryID, nil
}
