package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/phonenum"
)

type RegisterVerifyInput struct {
	PhoneNumber string `validate:"required,phone"`
	Code        string `validate:"required,len=5,numeric"`
}

// RegisterVerify consumes the registration code and activates the account
// in one transaction.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) error {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
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
		slog.WarnContext(ctx, "user account not found for register verify")
		return invalidCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by phone", "error", err)
		return goerror.NewServer(err)
	}

	if user.Status == entity.UserStatusActive {
		return goerror.NewBusiness("account already verified", goerror.CodeConflict)
	}
	if user.Status != entity.UserStatusUnverified {
		return s.ensureUserStatusAllowed(ctx, user.ID, user.Status)
	}

	code, err := s.validateCode(ctx, user.ID, in.Code, entity.CodePurposeRegister)
	if err != nil {
		return err
	}

	consumed, err := s.repoDB.ConsumeCodeAndActivate(ctx, code.ID, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume code and activate", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !consumed {
		slog.WarnContext(ctx, "code already used", "user_id", user.ID, "code_id", code.ID)
		return invalidCode()
	}

	return nil
}
