package usecase

import (
	"context"
	"log/slog"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/jwt"
)

// PasswordChange starts a password change for the authenticated user by
// issuing a confirmation code to their number.
func (s *Usecase) PasswordChange(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "PasswordChange")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	code, err := s.issueCode(ctx, clm.UserID, entity.CodePurposePasswordChange, true)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue password change code", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	s.publishCodeIssued(ctx, clm.UserID, clm.UserPhone, code)

	return nil
}
