package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mehran-jafari/account/internal/auth/outbound/db"
	"github.com/mehran-jafari/account/internal/auth/usecase"
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
)

const flowConfigYAML = `
modules:
  auth:
    otp_validity_minutes: 5
    otp_max_generation_attempts: 20
    login_max_attempts: 5
    login_lockout_window_seconds: 300
`

// capturingMessaging records published code events so the flow can read
// the digits a real client would receive by SMS.
type capturingMessaging struct {
	mu     sync.Mutex
	events []usecase.CodeIssuedEvent
}

func (m *capturingMessaging) PublishCodeIssued(_ context.Context, msg usecase.CodeIssuedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, msg)
	return nil
}

func (m *capturingMessaging) last(t *testing.T) usecase.CodeIssuedEvent {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		t.Fatalf("expected a published code event")
	}
	return m.events[len(m.events)-1]
}

func newFlowUsecase(t *testing.T) (*usecase.Usecase, *capturingMessaging, jwt.JWT) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(flowConfigYAML))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	vld, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	snow, err := uid.NewSnowflake()
	if err != nil {
		t.Fatalf("build uid generator: %v", err)
	}

	tokener, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:     "account",
		Audiences:  []string{"account"},
		TTLMinutes: time.Hour,
		Clock:      clock.New(),
		UUID:       uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("build jwt: %v", err)
	}

	msg := &capturingMessaging{}
	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dbPool, instrument.NewNoop()),
		RepoMessaging: msg,
		Validator:     vld,
		Config:        cfg,
		Bcrypt:        hash.NewBcrypt(4, "integration-pepper"),
		CodeGen:       otpcode.NewNumeric(),
		Limiter:       ratelimit.New(cacheClient),
		UID:           snow,
		Clock:         clock.New(),
		JWT:           tokener,
		Instrument:    instrument.NewNoop(),
	})
	return uc, msg, tokener
}

func TestAuthFlow(t *testing.T) {
	uc, msg, tokener := newFlowUsecase(t)
	ctx := context.Background()
	phone := nextPhone()
	const password = "Sup3rSecret!"

	// Register issues the first code and leaves the account unverified.
	err := uc.Register(ctx, usecase.RegisterInput{
		PhoneNumber: phone,
		Password:    password,
		FullName:    "Flow Tester",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	registerEvent := msg.last(t)
	if registerEvent.Purpose != "Register" {
		t.Fatalf("expected register purpose, got %q", registerEvent.Purpose)
	}

	// Logging in before verification is refused.
	err = uc.Login(ctx, usecase.LoginInput{PhoneNumber: phone, Password: password, ClientIP: "10.0.0.9"})
	if err == nil {
		t.Fatalf("expected unverified login to fail")
	}

	// Verifying with the delivered digits activates the account.
	err = uc.RegisterVerify(ctx, usecase.RegisterVerifyInput{PhoneNumber: phone, Code: registerEvent.Code})
	if err != nil {
		t.Fatalf("register verify: %v", err)
	}

	// A correct password issues a login code.
	err = uc.Login(ctx, usecase.LoginInput{PhoneNumber: phone, Password: password, ClientIP: "10.0.0.9"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	loginEvent := msg.last(t)
	if loginEvent.Purpose != "Login" {
		t.Fatalf("expected login purpose, got %q", loginEvent.Purpose)
	}

	// Consuming the login code yields a verifiable token.
	out, err := uc.LoginVerify(ctx, usecase.LoginVerifyInput{
		PhoneNumber: phone,
		Code:        loginEvent.Code,
		ClientIP:    "10.0.0.9",
	})
	if err != nil {
		t.Fatalf("login verify: %v", err)
	}
	claims, err := tokener.Verify(out.AccessToken)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.UserPhone != phone {
		t.Fatalf("expected token for %s, got %s", phone, claims.UserPhone)
	}

	// Replaying the login code fails: it was consumed above.
	if _, err := uc.LoginVerify(ctx, usecase.LoginVerifyInput{
		PhoneNumber: phone,
		Code:        loginEvent.Code,
		ClientIP:    "10.0.0.9",
	}); err == nil {
		t.Fatalf("expected replayed code to fail")
	}

	// The authenticated user requests and confirms a password change.
	authed := jwt.SetAuth(ctx, claims)
	if err := uc.PasswordChange(authed); err != nil {
		t.Fatalf("password change: %v", err)
	}
	changeEvent := msg.last(t)
	if changeEvent.Purpose != "PasswordChange" {
		t.Fatalf("expected password change purpose, got %q", changeEvent.Purpose)
	}

	const newPassword = "Fresh3rSecret!"
	err = uc.PasswordChangeVerify(authed, usecase.PasswordChangeVerifyInput{
		Code:        changeEvent.Code,
		NewPassword: newPassword,
	})
	if err != nil {
		t.Fatalf("password change verify: %v", err)
	}

	// The old password stops working and the new one logs in.
	err = uc.Login(ctx, usecase.LoginInput{PhoneNumber: phone, Password: password, ClientIP: "10.0.0.9"})
	if err == nil {
		t.Fatalf("expected old password to be rejected")
	}
	err = uc.Login(ctx, usecase.LoginInput{PhoneNumber: phone, Password: newPassword, ClientIP: "10.0.0.9"})
	if err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestAuthFlowLockout(t *testing.T) {
	uc, msg, _ := newFlowUsecase(t)
	ctx := context.Background()
	phone := nextPhone()
	clientIP := "10.0.1." + phone[len(phone)-2:]
	const password = "Sup3rSecret!"

	// Arrange an active account.
	if err := uc.Register(ctx, usecase.RegisterInput{
		PhoneNumber: phone,
		Password:    password,
		FullName:    "Lockout Tester",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := uc.RegisterVerify(ctx, usecase.RegisterVerifyInput{
		PhoneNumber: phone,
		Code:        msg.last(t).Code,
	}); err != nil {
		t.Fatalf("register verify: %v", err)
	}

	// Act: burn through the failed-attempt budget.
	for i := 0; i < 5; i++ {
		err := uc.Login(ctx, usecase.LoginInput{PhoneNumber: phone, Password: "wrong-password", ClientIP: clientIP})
		if err == nil {
			t.Fatalf("expected wrong password to fail")
		}
	}

	// Assert: even the right password is now refused.
	err := uc.Login(ctx, usecase.LoginInput{PhoneNumber: phone, Password: password, ClientIP: clientIP})
	if err == nil {
		t.Fatalf("expected locked account to refuse login")
	}
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected an application error, got %v", err)
	}
}
