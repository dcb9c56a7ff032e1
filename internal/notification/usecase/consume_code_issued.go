package usecase

import (
	"context"
	"log/slog"

	"github.com/mehran-jafari/account/internal/pkg/sms"
)

type ConsumeCodeIssuedInput struct {
	UserID      int64  `validate:"required,gt=0"`
	PhoneNumber string `validate:"required,phone"`
	Code        string `validate:"required,len=5,numeric"`
	Purpose     string `validate:"required"`
}

// ConsumeCodeIssued delivers a one-time code by SMS. A phone number inside
// its cooldown window is skipped silently; a cache failure does not block
// delivery.
func (s *Usecase) ConsumeCodeIssued(ctx context.Context, in ConsumeCodeIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeCodeIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	cooldown := s.cfg.GetSecond("modules.auth.resend_cooldown_seconds")
	allowed, err := s.limiter.AllowOnce(ctx, "sms:"+in.PhoneNumber, cooldown)
	if err != nil {
		slog.WarnContext(ctx, "cooldown check failed, sending anyway",
			"user_id", in.UserID, "error", err)
		allowed = true
	}
	if !allowed {
		slog.InfoContext(ctx, "sms suppressed by cooldown", "user_id", in.UserID)
		return nil
	}

	deliveryID, err := s.repoSMS.Send(ctx, sms.Message{
		To:   in.PhoneNumber,
		Body: s.composeBody(in.Purpose, in.Code),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send sms", "user_id", in.UserID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "sms delivered to gateway",
		"user_id", in.UserID, "delivery_id", deliveryID)

	return nil
}

func (s *Usecase) composeBody(purpose, code string) string {
	switch purpose {
	case "Register":
		return "Your verification code is " + code
	case "Login":
		return "Your login code is " + code
	case "PasswordChange":
		return "Your password change code is " + code
	default:
		return "Your code is " + code
	}
}
