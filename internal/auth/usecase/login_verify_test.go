package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/mehran-jafari/account/internal/auth/entity"
)

func TestLoginVerify(t *testing.T) {
	seed := func(env *testEnv) entity.Code {
		env.repo.addUser(entity.UserLoginInfo{
			ID:          7,
			PhoneNumber: "09123456789",
			Status:      entity.UserStatusActive,
			Password:    "hashed:s3cret-pass",
		})
		code := entity.Code{
			ID:        42,
			UserID:    7,
			Number:    "54321",
			Purpose:   entity.CodePurposeLogin,
			CreatedAt: env.clock.now,
			ExpiresAt: env.clock.now.Add(5 * time.Minute),
		}
		env.repo.codes[code.ID] = code
		return code
	}
	input := func() LoginVerifyInput {
		return LoginVerifyInput{
			PhoneNumber: "09123456789",
			Code:        "54321",
			ClientIP:    "203.0.113.9",
		}
	}

	t.Run("SuccessIssuesTokenAndResetsCounters", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(env)
		env.limiter.counts["login:203.0.113.9"] = 3

		// Act
		out, err := env.uc.LoginVerify(context.Background(), input())

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.AccessToken != "token-for-09123456789" {
			t.Fatalf("unexpected access token %q", out.AccessToken)
		}
		if env.repo.resetLoginCalls != 1 {
			t.Fatalf("expected account counter reset, got %d", env.repo.resetLoginCalls)
		}
		if count, _ := env.limiter.Count(context.Background(), "login:203.0.113.9"); count != 0 {
			t.Fatalf("expected ip counter cleared, got %d", count)
		}
	})

	t.Run("CodeConsumedExactlyOnce", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(env)

		// Act
		if _, err := env.uc.LoginVerify(context.Background(), input()); err != nil {
			t.Fatalf("first verify: %v", err)
		}
		_, err := env.uc.LoginVerify(context.Background(), input())

		// Assert
		assertInvalidCode(t, err)
	})

	t.Run("WrongDigits", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(env)
		in := input()
		in.Code = "00000"

		// Act
		_, err := env.uc.LoginVerify(context.Background(), in)

		// Assert
		assertInvalidCode(t, err)
	})

	t.Run("RegisterCodeCannotVerifyLogin", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		code := seed(env)
		code.Purpose = entity.CodePurposeRegister
		env.repo.codes[code.ID] = code

		// Act
		_, err := env.uc.LoginVerify(context.Background(), input())

		// Assert
		assertInvalidCode(t, err)
	})

	t.Run("UnknownNumberLooksLikeBadCode", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.LoginVerify(context.Background(), input())

		// Assert
		assertInvalidCode(t, err)
	})
}
