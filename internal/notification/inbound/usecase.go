package inbound

import (
	"context"

	"github.com/mehran-jafari/account/internal/notification/usecase"
)

type uc interface {
	ConsumeCodeIssued(ctx context.Context, in usecase.ConsumeCodeIssuedInput) error
}
