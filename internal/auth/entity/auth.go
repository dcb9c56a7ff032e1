package entity

import (
	"time"
)

type User struct {
	ID                  int64
	PhoneNumber         string
	FullName            string
	Status              UserStatus
	FailedLoginAttempts int32
	LockedUntil         *time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// IsLocked reports whether the account is inside a lockout window.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

type UserCredential struct {
	UserID    int64
	Password  string // hashed
	UpdatedAt time.Time
}

// Code is a one-time SMS code bound to a single account.
//
// A row is the source of truth for single use: consumption flips IsUsed
// with a conditional update, so two racing verifiers cannot both win.
type Code struct {
	ID        int64
	UserID    int64
	Number    string
	Purpose   CodePurpose
	CreatedAt time.Time
	ExpiresAt time.Time
	IsUsed    bool
}

// IsExpired reports whether the code's validity window has passed.
func (c Code) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// IsValid reports whether the code can still be consumed at now.
func (c Code) IsValid(now time.Time) bool {
	return !c.IsUsed && !c.IsExpired(now)
}

// ---- //

type UserLoginInfo struct {
	ID                  int64
	PhoneNumber         string
	Status              UserStatus
	Password            string
	FailedLoginAttempts int32
	LockedUntil         *time.Time
}

// IsLocked reports whether the account is inside a lockout window.
func (u UserLoginInfo) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// NewRegistration carries everything the store needs to create an account
// and its first code in one transaction.
type NewRegistration struct {
	UserID      int64
	PhoneNumber string
	FullName    string
	Password    string // hashed
	Code        Code
}
