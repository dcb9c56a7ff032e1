package inbound

import (
	"github.com/mehran-jafari/account/internal/auth/usecase"
	"github.com/mehran-jafari/account/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the SMS code authentication workflows.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a new account and sends its verification code by SMS.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Register(r.Context(), usecase.RegisterInput{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		FullName:    req.FullName,
	}); err != nil {
		return nil, err
	}

	return RegisterResponse{}, nil
}

// RegisterVerify consumes the registration code and activates the account.
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req RegisterVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{
		PhoneNumber: req.PhoneNumber,
		Code:        req.Code,
	}); err != nil {
		return nil, err
	}

	return RegisterVerifyResponse{}, nil
}

// Login checks the password and sends a login code by SMS.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Login(r.Context(), usecase.LoginInput{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		ClientIP:    r.RemoteAddr,
	}); err != nil {
		return nil, err
	}

	return LoginResponse{}, nil
}

// LoginVerify consumes the login code and issues an access token.
func (h *HTTPEndpoint) LoginVerify(r *router.Request) (any, error) {
	var req LoginVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginVerify(r.Context(), usecase.LoginVerifyInput{
		PhoneNumber: req.PhoneNumber,
		Code:        req.Code,
		ClientIP:    r.RemoteAddr,
	})
	if err != nil {
		return nil, err
	}

	return LoginVerifyResponse{AccessToken: resp.AccessToken}, nil
}

// CodeResend replaces the account's active code and sends the new one by SMS.
func (h *HTTPEndpoint) CodeResend(r *router.Request) (any, error) {
	var req CodeResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.CodeResend(r.Context(), usecase.CodeResendInput{
		PhoneNumber: req.PhoneNumber,
	}); err != nil {
		return nil, err
	}

	return CodeResendResponse{}, nil
}

// PasswordChange sends a password change confirmation code to the
// authenticated user.
func (h *HTTPEndpoint) PasswordChange(r *router.Request) (any, error) {
	if err := h.uc.PasswordChange(r.Context()); err != nil {
		return nil, err
	}

	return PasswordChangeResponse{}, nil
}

// PasswordChangeVerify consumes the confirmation code and stores the new
// password.
func (h *HTTPEndpoint) PasswordChangeVerify(r *router.Request) (any, error) {
	var req PasswordChangeVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordChangeVerify(r.Context(), usecase.PasswordChangeVerifyInput{
		Code:        req.Code,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordChangeVerifyResponse{}, nil
}
