package entity

type UserStatus int16

const (
	// UserStatusUnknown is mean status is not known / not set.
	UserStatusUnknown UserStatus = 0

	// UserStatusUnverified mean user exists but has not confirmed their number.
	UserStatusUnverified UserStatus = 1

	// UserStatusActive mean user is verified and allowed to use the app.
	UserStatusActive UserStatus = 2

	// UserStatusBanned mean user is blocked from using the app (policy/abuse/etc).
	UserStatusBanned UserStatus = 3

	// UserStatusInactive mean user is not currently active (e.g., deactivated, closed).
	UserStatusInactive UserStatus = 4
)

func (us UserStatus) String() string {
	switch us {
	case UserStatusActive:
		return "Active"
	case UserStatusBanned:
		return "Banned"
	case UserStatusInactive:
		return "Inactive"
	case UserStatusUnverified:
		return "Unverified"
	default:
		return "Unknown"
	}
}

func (us UserStatus) IsUnknown() bool {
	switch us {
	case UserStatusUnverified, UserStatusActive, UserStatusBanned, UserStatusInactive:
		return false
	default:
		return true
	}
}

// CodePurpose distinguishes which flow a one-time code belongs to, so a
// login code can never confirm a password change.
type CodePurpose int16

const (
	CodePurposeUnknown        CodePurpose = 0
	CodePurposeRegister       CodePurpose = 1
	CodePurposeLogin          CodePurpose = 2
	CodePurposePasswordChange CodePurpose = 3
)

func (cp CodePurpose) String() string {
	switch cp {
	case CodePurposeRegister:
		return "Register"
	case CodePurposeLogin:
		return "Login"
	case CodePurposePasswordChange:
		return "PasswordChange"
	default:
		return "Unknown"
	}
}
