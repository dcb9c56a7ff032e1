package inbound

import (
	"context"

	"github.com/mehran-jafari/account/internal/auth/usecase"
	"github.com/mehran-jafari/account/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) error
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) error

	Login(ctx context.Context, in usecase.LoginInput) error
	LoginVerify(ctx context.Context, in usecase.LoginVerifyInput) (*usecase.LoginVerifyOutput, error)

	CodeResend(ctx context.Context, in usecase.CodeResendInput) error

	PasswordChange(ctx context.Context) error
	PasswordChangeVerify(ctx context.Context, in usecase.PasswordChangeVerifyInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration
	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/register/verify", end.RegisterVerify)

	// Login
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/login/verify", end.LoginVerify)

	// Codes
	r.POST("/api/v1/auth/code/resend", end.CodeResend)

	// Password Management (need authenticated)
	r.POST("/api/v1/auth/password/change", end.PasswordChange)
	r.POST("/api/v1/auth/password/change/verify", end.PasswordChangeVerify)
}
