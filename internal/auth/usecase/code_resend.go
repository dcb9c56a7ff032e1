package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/phonenum"
)

type CodeResendInput struct {
	PhoneNumber string `validate:"required,phone"`
}

// CodeResend replaces the account's active code with fresh digits and a
// fresh validity window. The purpose carries over from the code being
// replaced; an account with nothing active gets a code matching its state
// (register for unverified, login otherwise). The delivery-side cooldown
// still decides whether an SMS actually goes out.
func (s *Usecase) CodeResend(ctx context.Context, in CodeResendInput) error {
	ctx, span := s.startSpan(ctx, "CodeResend")
	defer span.End()

	phone, err := phonenum.Normalize(in.PhoneNumber)
	if err != nil {
		return goerror.NewInvalidFormat("invalid mobile number")
	}
	in.PhoneNumber = phone

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByPhone(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		// Do not reveal whether the number is registered.
		slog.WarnContext(ctx, "user account not found for code resend")
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by phone", "error", err)
		return goerror.NewServer(err)
	}

	if user.Status == entity.UserStatusBanned || user.Status == entity.UserStatusInactive {
		return s.ensureUserStatusAllowed(ctx, user.ID, user.Status)
	}

	purpose := entity.CodePurposeLogin
	if user.Status == entity.UserStatusUnverified {
		purpose = entity.CodePurposeRegister
	}
	if active, err := s.repoDB.GetActiveCode(ctx, user.ID, s.clock.Now()); err == nil {
		purpose = active.Purpose
	} else if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get active code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	code, err := s.issueCode(ctx, user.ID, purpose, true)
	if err != nil {
		slog.ErrorContext(ctx, "failed to reissue code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.publishCodeIssued(ctx, user.ID, phone, code)

	return nil
}
