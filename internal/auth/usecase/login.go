package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/phonenum"
)

type LoginInput struct {
	PhoneNumber string `validate:"required,phone"`
	Password    string `validate:"required"`
	ClientIP    string `validate:"-"`
}

// Login checks the password and, on success, replaces the account's active
// code with a fresh login code for SMS delivery. Failed attempts feed both
// the per-IP limiter and the account's lockout counter.
func (s *Usecase) Login(ctx context.Context, in LoginInput) error {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	phone, err := phonenum.Normalize(in.PhoneNumber)
	if err != nil {
		return goerror.NewInvalidFormat("invalid mobile number")
	}
	in.PhoneNumber = phone

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if blocked := s.ipBlocked(ctx, in.ClientIP); blocked {
		return goerror.NewBusiness("too many failed attempts, try again later", goerror.CodeTooManyRequest)
	}

	user, err := s.repoDB.GetUserLoginInfo(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found")
		s.recordLoginFailure(ctx, in.ClientIP, 0)
		return goerror.NewBusiness("invalid mobile number or password", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user login info", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
		return err
	}

	if user.IsLocked(s.clock.Now()) {
		slog.WarnContext(ctx, "account temporarily locked", "user_id", user.ID)
		return goerror.NewBusiness("account temporarily locked, try again later", goerror.CodeTooManyRequest)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		s.recordLoginFailure(ctx, in.ClientIP, user.ID)
		return goerror.NewBusiness("invalid mobile number or password", goerror.CodeUnauthorized)
	}

	code, err := s.issueCode(ctx, user.ID, entity.CodePurposeLogin, true)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue login code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.publishCodeIssued(ctx, user.ID, phone, code)

	return nil
}

// ipBlocked reports whether the client IP has exhausted its failed-attempt
// budget. Limiter faults fail open: an unreachable cache must not take
// logins down with it.
func (s *Usecase) ipBlocked(ctx context.Context, ip string) bool {
	if ip == "" {
		return false
	}

	count, err := s.limiter.Count(ctx, "login:"+ip)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read login attempt counter", "error", err)
		return false
	}

	return count >= s.cfg.GetInt64("modules.auth.login_max_attempts")
}

// recordLoginFailure bumps the per-IP counter and, when the attempt maps to
// a known account, the account's lockout counter. Both are best effort.
func (s *Usecase) recordLoginFailure(ctx context.Context, ip string, userID int64) {
	window := s.cfg.GetSecond("modules.auth.login_lockout_window_seconds")
	max := s.cfg.GetInt64("modules.auth.login_max_attempts")

	if ip != "" {
		if _, err := s.limiter.Fail(ctx, "login:"+ip, window, max); err != nil {
			slog.ErrorContext(ctx, "failed to record login attempt", "error", err)
		}
	}

	if userID != 0 {
		lockedUntil := s.clock.Now().Add(window)
		if err := s.repoDB.IncrementFailedLogin(ctx, userID, int32(max), lockedUntil); err != nil {
			slog.ErrorContext(ctx, "failed to increment failed login", "user_id", userID, "error", err)
		}
	}
}
