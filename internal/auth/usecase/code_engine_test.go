package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
)

func TestIssueCode(t *testing.T) {
	t.Run("FirstCandidateStored", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.gen.queue = []string{"12345"}

		// Act
		code, err := env.uc.issueCode(context.Background(), 7, entity.CodePurposeLogin, false)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if code.Number != "12345" {
			t.Fatalf("expected stored digits 12345, got %s", code.Number)
		}
		if !code.ExpiresAt.Equal(env.clock.now.Add(5 * time.Minute)) {
			t.Fatalf("expected expiry 5 minutes from now, got %v", code.ExpiresAt)
		}
	})

	t.Run("CollisionRetriesWithFreshDigits", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.gen.queue = []string{"11111", "22222"}
		env.repo.createCodeErrs = []error{goerror.ErrConflict}

		// Act
		code, err := env.uc.issueCode(context.Background(), 7, entity.CodePurposeLogin, false)

		// Assert
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if code.Number != "22222" {
			t.Fatalf("expected second candidate stored, got %s", code.Number)
		}
	})

	t.Run("ExhaustedAfterMaxAttempts", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.repo.createCodeErrs = []error{goerror.ErrConflict, goerror.ErrConflict, goerror.ErrConflict}

		// Act
		_, err := env.uc.issueCode(context.Background(), 7, entity.CodePurposeLogin, false)

		// Assert
		if !errors.Is(err, ErrCodeGenerationExhausted) {
			t.Fatalf("expected exhaustion error, got %v", err)
		}
	})

	t.Run("NonConflictErrorNotRetried", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		storeErr := errors.New("connection reset")
		env.repo.createCodeErrs = []error{storeErr}

		// Act
		_, err := env.uc.issueCode(context.Background(), 7, entity.CodePurposeLogin, false)

		// Assert
		if !errors.Is(err, storeErr) {
			t.Fatalf("expected store error passthrough, got %v", err)
		}
		if got := len(env.repo.codes); got != 0 {
			t.Fatalf("expected no code stored, got %d", got)
		}
	})

	t.Run("ReplaceDropsPriorUnusedCodes", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.gen.queue = []string{"11111", "22222"}
		if _, err := env.uc.issueCode(context.Background(), 7, entity.CodePurposeLogin, false); err != nil {
			t.Fatalf("seed code: %v", err)
		}

		// Act
		code, err := env.uc.issueCode(context.Background(), 7, entity.CodePurposeLogin, true)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(env.repo.codes) != 1 {
			t.Fatalf("expected old code replaced, have %d codes", len(env.repo.codes))
		}
		if got, _ := env.repo.unusedCodeFor(7); got.Number != code.Number {
			t.Fatalf("expected fresh code %s to survive, got %s", code.Number, got.Number)
		}
	})
}

func TestValidateCode(t *testing.T) {
	seed := func(env *testEnv, purpose entity.CodePurpose, expiresAt time.Time) entity.Code {
		code := entity.Code{
			ID:        99,
			UserID:    7,
			Number:    "12345",
			Purpose:   purpose,
			CreatedAt: env.clock.now,
			ExpiresAt: expiresAt,
		}
		env.repo.codes[code.ID] = code
		return code
	}

	t.Run("Valid", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(env, entity.CodePurposeLogin, env.clock.now.Add(time.Minute))

		// Act
		code, err := env.uc.validateCode(context.Background(), 7, "12345", entity.CodePurposeLogin)

		// Assert
		if err != nil {
			t.Fatalf("expected valid code, got %v", err)
		}
		if code.ID != 99 {
			t.Fatalf("expected code 99, got %d", code.ID)
		}
	})

	t.Run("UnknownDigits", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.validateCode(context.Background(), 7, "00000", entity.CodePurposeLogin)

		// Assert
		assertInvalidCode(t, err)
	})

	t.Run("PurposeMismatch", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(env, entity.CodePurposeRegister, env.clock.now.Add(time.Minute))

		// Act
		_, err := env.uc.validateCode(context.Background(), 7, "12345", entity.CodePurposeLogin)

		// Assert
		assertInvalidCode(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(env, entity.CodePurposeLogin, env.clock.now.Add(-time.Second))

		// Act
		_, err := env.uc.validateCode(context.Background(), 7, "12345", entity.CodePurposeLogin)

		// Assert
		assertInvalidCode(t, err)
	})

	t.Run("ExpiryBoundaryIsExclusive", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		seed(env, entity.CodePurposeLogin, env.clock.now)

		// Act
		_, err := env.uc.validateCode(context.Background(), 7, "12345", entity.CodePurposeLogin)

		// Assert
		assertInvalidCode(t, err)
	})
}

// assertInvalidCode checks that err is the single collapsed bad-code
// failure shown to callers.
func assertInvalidCode(t *testing.T, err error) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected goerror, got %v", err)
	}
	if gerr.Msg() != "invalid or expired code" {
		t.Fatalf("expected collapsed invalid-code message, got %q", gerr.Msg())
	}
}
