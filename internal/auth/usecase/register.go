package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/phonenum"
)

type RegisterInput struct {
	PhoneNumber string `validate:"required,phone"`
	Password    string `validate:"required,password"`
	FullName    string `validate:"required,min=5,max=100,alphaspace"`
}

// Register creates an unverified account and its first code in one
// transaction, then publishes the code for SMS delivery.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) error {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	phone, err := phonenum.Normalize(in.PhoneNumber)
	if err != nil {
		return goerror.NewInvalidFormat("invalid mobile number")
	}
	in.PhoneNumber = phone
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByPhone(ctx, phone)
	if err == nil {
		switch user.Status {
		case entity.UserStatusActive:
			return goerror.NewBusiness("mobile number already registered", goerror.CodeConflict)
		case entity.UserStatusUnverified:
			return goerror.NewBusiness("account not verified", goerror.CodeConflict)
		case entity.UserStatusInactive:
			return goerror.NewBusiness("account deactivated", goerror.CodeConflict)
		default:
			return goerror.NewBusiness("account not allowed", goerror.CodeForbidden)
		}
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by phone", "error", err)
		return goerror.NewServer(err)
	}

	hashedPassword, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	newUserID := s.uid.Generate()
	reg := entity.NewRegistration{
		UserID:      newUserID,
		PhoneNumber: phone,
		FullName:    in.FullName,
		Password:    string(hashedPassword),
	}

	// The first code is created inside the registration transaction, so a
	// digit collision rolls the whole account back and retries cleanly.
	code, err := s.issueCodeWith(ctx, newUserID, entity.CodePurposeRegister, func(ctx context.Context, c entity.Code) error {
		reg.Code = c
		return s.repoDB.NewRegistration(ctx, reg)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo new registration", "user_id", newUserID, "error", err)
		return goerror.NewServer(err)
	}

	s.publishCodeIssued(ctx, newUserID, phone, code)

	return nil
}
