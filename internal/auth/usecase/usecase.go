package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/clock"
	"github.com/mehran-jafari/account/internal/pkg/config"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/hash"
	"github.com/mehran-jafari/account/internal/pkg/instrument"
	"github.com/mehran-jafari/account/internal/pkg/jwt"
	"github.com/mehran-jafari/account/internal/pkg/otpcode"
	"github.com/mehran-jafari/account/internal/pkg/ratelimit"
	"github.com/mehran-jafari/account/internal/pkg/uid"
	"github.com/mehran-jafari/account/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// CodeIssuedEvent is published after a one-time code is committed. The
// notification module delivers it; issuance never waits on delivery.
type CodeIssuedEvent struct {
	UserID      int64
	PhoneNumber string
	Code        string
	Purpose     string
}

type repoMessaging interface {
	PublishCodeIssued(ctx context.Context, msg CodeIssuedEvent) error
}

type repoDB interface {
	GetUserByPhone(ctx context.Context, phone string) (entity.User, error)
	GetUserLoginInfo(ctx context.Context, phone string) (entity.UserLoginInfo, error)
	GetCodeByUserNumber(ctx context.Context, userID int64, number string) (entity.Code, error)
	GetActiveCode(ctx context.Context, userID int64, now time.Time) (entity.Code, error)

	CreateCode(ctx context.Context, code entity.Code) error
	ReplaceCode(ctx context.Context, code entity.Code) error
	MarkCodeUsed(ctx context.Context, codeID int64) (bool, error)
	DeleteUnusedCodes(ctx context.Context, userID int64) error

	NewRegistration(ctx context.Context, reg entity.NewRegistration) error
	ConsumeCodeAndActivate(ctx context.Context, codeID, userID int64) (bool, error)
	ConsumeCodeAndSetPassword(ctx context.Context, codeID, userID int64, hash string) (bool, error)

	IncrementFailedLogin(ctx context.Context, userID int64, max int32, lockedUntil time.Time) error
	ResetFailedLogin(ctx context.Context, userID int64) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	bcrypt        hash.Hash
	codeGen       otpcode.Generator
	limiter       ratelimit.Limiter
	uid           uid.NumberID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Bcrypt        hash.Hash
	CodeGen       otpcode.Generator
	Limiter       ratelimit.Limiter
	UID           uid.NumberID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		bcrypt:        dep.Bcrypt,
		codeGen:       dep.CodeGen,
		limiter:       dep.Limiter,
		uid:           dep.UID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) ensureUserStatusAllowed(ctx context.Context, userID int64, status entity.UserStatus) error {
	switch status {
	case entity.UserStatusActive:
		return nil

	case entity.UserStatusUnverified:
		slog.WarnContext(ctx, "user account is unverified", "user_id", userID)
		return goerror.NewBusiness("mobile number not verified", goerror.CodeForbidden)

	case entity.UserStatusBanned:
		slog.WarnContext(ctx, "user account is banned", "user_id", userID)
		return goerror.NewBusiness("account is banned", goerror.CodeForbidden)

	case entity.UserStatusInactive:
		slog.WarnContext(ctx, "user account is deleted", "user_id", userID)
		return goerror.NewBusiness("account is deleted", goerror.CodeForbidden)

	default:
		slog.WarnContext(ctx, "user account status is unrecognized", "user_id", userID)
		return goerror.NewBusiness("account status is unrecognized", goerror.CodeForbidden)
	}
}

// publishCodeIssued hands the committed code to the event bus. Delivery is
// fire and forget: a broker fault is logged and the caller still succeeds.
func (s *Usecase) publishCodeIssued(ctx context.Context, user int64, phone string, code entity.Code) {
	err := s.repoMessaging.PublishCodeIssued(ctx, CodeIssuedEvent{
		UserID:      user,
		PhoneNumber: phone,
		Code:        code.Number,
		Purpose:     code.Purpose.String(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish code issued", "user_id", user, "error", err)
	}
}
