package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/sethvargo/go-retry"
)

// ErrCodeGenerationExhausted is returned when every candidate collided with
// an active code. With a 5-digit space this only happens under pathological
// load and surfaces to the caller as a server error.
var ErrCodeGenerationExhausted = errors.New("auth: code generation attempts exhausted")

const generationBackoffStep = 100 * time.Millisecond

// invalidCode is the single user-visible failure for every bad-code shape
// (unknown, expired, already used). Collapsing them resists enumeration;
// logs keep the distinction.
func invalidCode() error {
	return goerror.NewBusiness("invalid or expired code", goerror.CodeUnauthorized)
}

// issueCode stores a fresh code for the account, replacing its unused
// codes atomically when replace is set.
func (s *Usecase) issueCode(ctx context.Context, userID int64, purpose entity.CodePurpose, replace bool) (entity.Code, error) {
	store := s.repoDB.CreateCode
	if replace {
		store = s.repoDB.ReplaceCode
	}
	return s.issueCodeWith(ctx, userID, purpose, store)
}

// issueCodeWith generates a candidate, stamps its validity window from the
// clock, and hands it to store. A collision with an active code
// (goerror.ErrConflict) triggers a retry with fresh digits under a linear
// backoff of attempt x 100ms, bounded by
// modules.auth.otp_max_generation_attempts.
func (s *Usecase) issueCodeWith(ctx context.Context, userID int64, purpose entity.CodePurpose, store func(context.Context, entity.Code) error) (entity.Code, error) {
	validity := s.cfg.GetMinute("modules.auth.otp_validity_minutes")
	maxAttempts := s.cfg.GetUint64("modules.auth.otp_max_generation_attempts")
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	attempt := 0
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * generationBackoffStep, false
	})

	var code entity.Code
	err := retry.Do(ctx, retry.WithMaxRetries(maxAttempts-1, backoff), func(ctx context.Context) error {
		number, err := s.codeGen.Generate()
		if err != nil {
			return err
		}

		now := s.clock.Now()
		code = entity.Code{
			ID:        s.uid.Generate(),
			UserID:    userID,
			Number:    number,
			Purpose:   purpose,
			CreatedAt: now,
			ExpiresAt: now.Add(validity),
		}

		err = store(ctx, code)
		if errors.Is(err, goerror.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.ErrorContext(ctx, "code generation exhausted", "user_id", userID, "attempts", maxAttempts)
			return entity.Code{}, ErrCodeGenerationExhausted
		}
		return entity.Code{}, err
	}

	return code, nil
}

// validateCode looks up the unused code matching the typed digits and
// checks purpose and expiry without consuming it. Consumption is a
// separate conditional update so racing verifiers resolve at the store.
func (s *Usecase) validateCode(ctx context.Context, userID int64, digits string, purpose entity.CodePurpose) (entity.Code, error) {
	code, err := s.repoDB.GetCodeByUserNumber(ctx, userID, digits)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no unused code matches", "user_id", userID)
		return entity.Code{}, invalidCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get code", "user_id", userID, "error", err)
		return entity.Code{}, goerror.NewServer(err)
	}

	if code.Purpose != purpose {
		slog.WarnContext(ctx, "code purpose mismatch", "user_id", userID, "purpose", code.Purpose.String())
		return entity.Code{}, invalidCode()
	}

	if code.IsExpired(s.clock.Now()) {
		slog.WarnContext(ctx, "code expired", "user_id", userID, "code_id", code.ID)
		return entity.Code{}, invalidCode()
	}

	return code, nil
}
