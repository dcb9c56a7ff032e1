package inbound

type RegisterRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
}

type RegisterResponse struct{}

func (RegisterResponse) Message() string {
	return "Registration successful. We have sent a verification code to your phone."
}

type RegisterVerifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type RegisterVerifyResponse struct{}

func (RegisterVerifyResponse) Message() string {
	return "Your account has been verified."
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type LoginResponse struct{}

func (LoginResponse) Message() string {
	return "We have sent a login code to your phone."
}

type LoginVerifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type LoginVerifyResponse struct {
	AccessToken string `json:"access_token"`
}

type CodeResendRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type CodeResendResponse struct{}

func (CodeResendResponse) Message() string {
	return "If an account with that phone number exists, we have sent a new code."
}

type PasswordChangeResponse struct{}

func (PasswordChangeResponse) Message() string {
	return "We have sent a confirmation code to your phone."
}

type PasswordChangeVerifyRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type PasswordChangeVerifyResponse struct{}

func (PasswordChangeVerifyResponse) Message() string {
	return "Your password has been changed."
}
