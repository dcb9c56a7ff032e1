package usecase

import (
	"context"
	"log/slog"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/jwt"
)

type PasswordChangeVerifyInput struct {
	Code        string `validate:"required,len=5,numeric"`
	NewPassword string `validate:"required,password"`
}

// PasswordChangeVerify consumes the confirmation code and stores the new
// password hash in one transaction.
func (s *Usecase) PasswordChangeVerify(ctx context.Context, in PasswordChangeVerifyInput) error {
	ctx, span := s.startSpan(ctx, "PasswordChangeVerify")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	code, err := s.validateCode(ctx, clm.UserID, in.Code, entity.CodePurposePasswordChange)
	if err != nil {
		return err
	}

	hashed, err := s.bcrypt.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	consumed, err := s.repoDB.ConsumeCodeAndSetPassword(ctx, code.ID, clm.UserID, string(hashed))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume code and set password", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}
	if !consumed {
		slog.WarnContext(ctx, "code already used", "user_id", clm.UserID, "code_id", code.ID)
		return invalidCode()
	}

	return nil
}
