package usecase

import (
	"context"
	"testing"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
)

func TestRegister(t *testing.T) {
	input := func() RegisterInput {
		return RegisterInput{
			PhoneNumber: "+989123456789",
			Password:    "s3cret-pass",
			FullName:    "Mehran Jafari",
		}
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.gen.queue = []string{"12345"}

		// Act
		err := env.uc.Register(context.Background(), input())

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		user, err := env.repo.GetUserLoginInfo(context.Background(), "09123456789")
		if err != nil {
			t.Fatalf("expected user stored under normalized number: %v", err)
		}
		if user.Status != entity.UserStatusUnverified {
			t.Fatalf("expected unverified status, got %s", user.Status.String())
		}
		if user.Password != "hashed:s3cret-pass" {
			t.Fatalf("expected hashed password stored, got %q", user.Password)
		}

		code, ok := env.repo.unusedCodeFor(user.ID)
		if !ok {
			t.Fatalf("expected registration code stored")
		}
		if code.Purpose != entity.CodePurposeRegister {
			t.Fatalf("expected register purpose, got %s", code.Purpose.String())
		}

		events := env.msg.published()
		if len(events) != 1 {
			t.Fatalf("expected one published event, got %d", len(events))
		}
		if events[0].Code != "12345" || events[0].PhoneNumber != "09123456789" {
			t.Fatalf("unexpected event payload: %+v", events[0])
		}
	})

	t.Run("NormalizesInternationalPrefix", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		in := input()
		in.PhoneNumber = "+98 912 345 6789"

		// Act
		if err := env.uc.Register(context.Background(), in); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// Assert
		if _, err := env.repo.GetUserLoginInfo(context.Background(), "09123456789"); err != nil {
			t.Fatalf("expected user stored under normalized number: %v", err)
		}
	})

	t.Run("InvalidPhoneRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		in := input()
		in.PhoneNumber = "12345"

		// Act
		err := env.uc.Register(context.Background(), in)

		// Assert
		if err == nil {
			t.Fatalf("expected error for invalid phone")
		}
		if len(env.repo.users) != 0 {
			t.Fatalf("expected no user created")
		}
	})

	t.Run("ActiveNumberConflicts", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.repo.addUser(entity.UserLoginInfo{
			ID:          1,
			PhoneNumber: "09123456789",
			Status:      entity.UserStatusActive,
		})

		// Act
		err := env.uc.Register(context.Background(), input())

		// Assert
		var gerr *goerror.Error
		if !asGoError(err, &gerr) || gerr.Msg() != "mobile number already registered" {
			t.Fatalf("expected already-registered conflict, got %v", err)
		}
	})

	t.Run("UnverifiedNumberConflicts", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.repo.addUser(entity.UserLoginInfo{
			ID:          1,
			PhoneNumber: "09123456789",
			Status:      entity.UserStatusUnverified,
		})

		// Act
		err := env.uc.Register(context.Background(), input())

		// Assert
		var gerr *goerror.Error
		if !asGoError(err, &gerr) || gerr.Msg() != "account not verified" {
			t.Fatalf("expected not-verified conflict, got %v", err)
		}
	})

	t.Run("ShortFullNameRejected", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		in := input()
		in.FullName = "Bob"

		// Act
		err := env.uc.Register(context.Background(), in)

		// Assert
		if err == nil {
			t.Fatalf("expected validation error for short full name")
		}
	})
}
