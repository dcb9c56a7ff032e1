package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/phonenum"
)

type LoginVerifyInput struct {
	PhoneNumber string `validate:"required,phone"`
	Code        string `validate:"required,len=5,numeric"`
	ClientIP    string `validate:"-"`
}

type LoginVerifyOutput struct {
	AccessToken string
}

// LoginVerify consumes the login code and issues the access token. Both
// failure counters (per-IP and per-account) reset on success.
func (s *Usecase) LoginVerify(ctx context.Context, in LoginVerifyInput) (*LoginVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginVerify")
	defer span.End()

	phone, err := phonenum.Normalize(in.PhoneNumber)
	if err != nil {
		return nil, goerror.NewInvalidFormat("invalid mobile number")
	}
	in.PhoneNumber = phone

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByPhone(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found for login verify")
		return nil, invalidCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by phone", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
		return nil, err
	}

	code, err := s.validateCode(ctx, user.ID, in.Code, entity.CodePurposeLogin)
	if err != nil {
		return nil, err
	}

	consumed, err := s.repoDB.MarkCodeUsed(ctx, code.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark code used", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !consumed {
		slog.WarnContext(ctx, "code already used", "user_id", user.ID, "code_id", code.ID)
		return nil, invalidCode()
	}

	if err := s.repoDB.ResetFailedLogin(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to reset failed login", "user_id", user.ID, "error", err)
	}
	if in.ClientIP != "" {
		if err := s.limiter.Reset(ctx, "login:"+in.ClientIP); err != nil {
			slog.ErrorContext(ctx, "failed to reset login attempt counter", "error", err)
		}
	}

	token, err := s.jwt.Generate(user.ID, user.PhoneNumber)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginVerifyOutput{AccessToken: token}, nil
}
