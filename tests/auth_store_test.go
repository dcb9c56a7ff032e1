package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/auth/outbound/db"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/instrument"
)

func newStore() *db.DB {
	return db.NewDB(dbPool, instrument.NewNoop())
}

// seedUser inserts an account row directly and returns its id.
func seedUser(t *testing.T, status entity.UserStatus) int64 {
	t.Helper()

	id := nextID()
	_, err := dbPool.Exec(context.Background(),
		`INSERT INTO users (id, phone_number, full_name, status) VALUES ($1, $2, $3, $4)`,
		id, nextPhone(), "Integration Tester", int16(status),
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func newCode(userID int64, number string, validity time.Duration) entity.Code {
	now := time.Now().UTC()
	return entity.Code{
		ID:        nextID(),
		UserID:    userID,
		Number:    number,
		Purpose:   entity.CodePurposeLogin,
		CreatedAt: now,
		ExpiresAt: now.Add(validity),
	}
}

func TestCreateCode(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	t.Run("ActiveDigitsConflict", func(t *testing.T) {
		// Arrange
		userA := seedUser(t, entity.UserStatusActive)
		userB := seedUser(t, entity.UserStatusActive)
		if err := store.CreateCode(ctx, newCode(userA, "31001", 5*time.Minute)); err != nil {
			t.Fatalf("first create: %v", err)
		}

		// Act
		err := store.CreateCode(ctx, newCode(userB, "31001", 5*time.Minute))

		// Assert
		if !errors.Is(err, goerror.ErrConflict) {
			t.Fatalf("expected conflict on active digits, got %v", err)
		}
	})

	t.Run("ExpiredDigitsReusable", func(t *testing.T) {
		// Arrange
		userA := seedUser(t, entity.UserStatusActive)
		userB := seedUser(t, entity.UserStatusActive)
		expired := newCode(userA, "31002", time.Minute)
		expired.CreatedAt = expired.CreatedAt.Add(-10 * time.Minute)
		expired.ExpiresAt = expired.ExpiresAt.Add(-10 * time.Minute)
		if err := store.CreateCode(ctx, expired); err != nil {
			t.Fatalf("seed expired code: %v", err)
		}

		// Act
		err := store.CreateCode(ctx, newCode(userB, "31002", 5*time.Minute))

		// Assert
		if err != nil {
			t.Fatalf("expected expired digits to be reusable, got %v", err)
		}
	})

	t.Run("ConsumedDigitsReusable", func(t *testing.T) {
		// Arrange
		userA := seedUser(t, entity.UserStatusActive)
		userB := seedUser(t, entity.UserStatusActive)
		used := newCode(userA, "31003", 5*time.Minute)
		if err := store.CreateCode(ctx, used); err != nil {
			t.Fatalf("seed code: %v", err)
		}
		if ok, err := store.MarkCodeUsed(ctx, used.ID); err != nil || !ok {
			t.Fatalf("consume code: ok=%v err=%v", ok, err)
		}

		// Act
		err := store.CreateCode(ctx, newCode(userB, "31003", 5*time.Minute))

		// Assert
		if err != nil {
			t.Fatalf("expected consumed digits to be reusable, got %v", err)
		}
	})

	t.Run("ConcurrentSameDigitsOneWinner", func(t *testing.T) {
		// Arrange
		const writers = 8
		users := make([]int64, writers)
		for i := range users {
			users[i] = seedUser(t, entity.UserStatusActive)
		}

		// Act
		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = store.CreateCode(ctx, newCode(users[i], "31004", 5*time.Minute))
			}(i)
		}
		wg.Wait()

		// Assert
		var wins, conflicts int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, goerror.ErrConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if wins != 1 || conflicts != writers-1 {
			t.Fatalf("expected exactly one winner, got %d wins and %d conflicts", wins, conflicts)
		}
	})
}

func TestReplaceCode(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	// Arrange
	userID := seedUser(t, entity.UserStatusActive)
	old := newCode(userID, "32001", 5*time.Minute)
	if err := store.CreateCode(ctx, old); err != nil {
		t.Fatalf("seed code: %v", err)
	}

	// Act
	fresh := newCode(userID, "32002", 5*time.Minute)
	if err := store.ReplaceCode(ctx, fresh); err != nil {
		t.Fatalf("replace code: %v", err)
	}

	// Assert
	if _, err := store.GetCodeByUserNumber(ctx, userID, "32001"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected old code gone, got %v", err)
	}
	active, err := store.GetActiveCode(ctx, userID, time.Now().UTC())
	if err != nil {
		t.Fatalf("get active code: %v", err)
	}
	if active.ID != fresh.ID {
		t.Fatalf("expected replacement active, got code %d", active.ID)
	}
}

func TestMarkCodeUsedConcurrentOneWinner(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	// Arrange
	userID := seedUser(t, entity.UserStatusActive)
	code := newCode(userID, "33001", 5*time.Minute)
	if err := store.CreateCode(ctx, code); err != nil {
		t.Fatalf("seed code: %v", err)
	}

	// Act
	const verifiers = 8
	var wg sync.WaitGroup
	wins := make([]bool, verifiers)
	for i := 0; i < verifiers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.MarkCodeUsed(ctx, code.ID)
			if err != nil {
				t.Errorf("mark code used: %v", err)
				return
			}
			wins[i] = ok
		}(i)
	}
	wg.Wait()

	// Assert
	var winners int
	for _, ok := range wins {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one verifier to win, got %d", winners)
	}
}

func TestNewRegistration(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	t.Run("CreatesUserCredentialAndCode", func(t *testing.T) {
		// Arrange
		phone := nextPhone()
		userID := nextID()
		reg := entity.NewRegistration{
			UserID:      userID,
			PhoneNumber: phone,
			FullName:    "Integration Tester",
			Password:    "hashed-password",
			Code:        newCode(userID, "34001", 5*time.Minute),
		}
		reg.Code.Purpose = entity.CodePurposeRegister

		// Act
		if err := store.NewRegistration(ctx, reg); err != nil {
			t.Fatalf("new registration: %v", err)
		}

		// Assert
		user, err := store.GetUserByPhone(ctx, phone)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if user.Status != entity.UserStatusUnverified {
			t.Fatalf("expected unverified, got %s", user.Status.String())
		}
		info, err := store.GetUserLoginInfo(ctx, phone)
		if err != nil {
			t.Fatalf("get login info: %v", err)
		}
		if info.Password != "hashed-password" {
			t.Fatalf("expected credential stored, got %q", info.Password)
		}
		if _, err := store.GetCodeByUserNumber(ctx, userID, "34001"); err != nil {
			t.Fatalf("expected registration code stored: %v", err)
		}
	})

	t.Run("DuplicatePhoneConflicts", func(t *testing.T) {
		// Arrange
		phone := nextPhone()
		first := entity.NewRegistration{
			UserID:      nextID(),
			PhoneNumber: phone,
			FullName:    "Integration Tester",
			Password:    "hash-one",
		}
		first.Code = newCode(first.UserID, "34002", 5*time.Minute)
		if err := store.NewRegistration(ctx, first); err != nil {
			t.Fatalf("first registration: %v", err)
		}

		second := entity.NewRegistration{
			UserID:      nextID(),
			PhoneNumber: phone,
			FullName:    "Integration Tester",
			Password:    "hash-two",
		}
		second.Code = newCode(second.UserID, "34003", 5*time.Minute)

		// Act
		err := store.NewRegistration(ctx, second)

		// Assert
		if !errors.Is(err, goerror.ErrConflict) {
			t.Fatalf("expected duplicate phone conflict, got %v", err)
		}
		if _, err := store.GetCodeByUserNumber(ctx, second.UserID, "34003"); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected rolled back code, got %v", err)
		}
	})
}

func TestConsumeCodeAndActivate(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	// Arrange
	phone := nextPhone()
	userID := nextID()
	reg := entity.NewRegistration{
		UserID:      userID,
		PhoneNumber: phone,
		FullName:    "Integration Tester",
		Password:    "hashed-password",
		Code:        newCode(userID, "35001", 5*time.Minute),
	}
	reg.Code.Purpose = entity.CodePurposeRegister
	if err := store.NewRegistration(ctx, reg); err != nil {
		t.Fatalf("new registration: %v", err)
	}

	// Act
	consumed, err := store.ConsumeCodeAndActivate(ctx, reg.Code.ID, userID)

	// Assert
	if err != nil || !consumed {
		t.Fatalf("expected consume to win: ok=%v err=%v", consumed, err)
	}
	user, err := store.GetUserByPhone(ctx, phone)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Status != entity.UserStatusActive {
		t.Fatalf("expected active status, got %s", user.Status.String())
	}

	again, err := store.ConsumeCodeAndActivate(ctx, reg.Code.ID, userID)
	if err != nil {
		t.Fatalf("replay consume: %v", err)
	}
	if again {
		t.Fatalf("expected replay to lose")
	}
}

func TestFailedLoginCounter(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	// Arrange
	userID := seedUser(t, entity.UserStatusActive)
	lockedUntil := time.Now().UTC().Add(5 * time.Minute)

	// Act: four failures stay under a max of five.
	for i := 0; i < 4; i++ {
		if err := store.IncrementFailedLogin(ctx, userID, 5, lockedUntil); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	// Assert
	var attempts int32
	var locked *time.Time
	if err := dbPool.QueryRow(ctx,
		`SELECT failed_login_attempts, locked_until FROM users WHERE id = $1`, userID,
	).Scan(&attempts, &locked); err != nil {
		t.Fatalf("read counters: %v", err)
	}
	if attempts != 4 || locked != nil {
		t.Fatalf("expected 4 attempts and no lock, got %d / %v", attempts, locked)
	}

	// The fifth failure arms the lock.
	if err := store.IncrementFailedLogin(ctx, userID, 5, lockedUntil); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := dbPool.QueryRow(ctx,
		`SELECT failed_login_attempts, locked_until FROM users WHERE id = $1`, userID,
	).Scan(&attempts, &locked); err != nil {
		t.Fatalf("read counters: %v", err)
	}
	if attempts != 5 || locked == nil {
		t.Fatalf("expected lock armed at 5 attempts, got %d / %v", attempts, locked)
	}

	// Reset clears both.
	if err := store.ResetFailedLogin(ctx, userID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := dbPool.QueryRow(ctx,
		`SELECT failed_login_attempts, locked_until FROM users WHERE id = $1`, userID,
	).Scan(&attempts, &locked); err != nil {
		t.Fatalf("read counters: %v", err)
	}
	if attempts != 0 || locked != nil {
		t.Fatalf("expected counters cleared, got %d / %v", attempts, locked)
	}
}
