package entity

type UserStatus int16

const (
	// UserStatusUnknown means the status is not set.
	UserStatusUnknown UserStatus = 0

	// UserStatusUnverified means the user registered but has not confirmed the emailed code.
	UserStatusUnverified UserStatus = 1

	// UserStatusActive means the user verified their email and may log in.
	UserStatusActive UserStatus = 2
)

func (us UserStatus) String() string {
	switch us {
	case UserStatusActive:
		return "Active"
	case UserStatusUnverified:
		return "Unverified"
	default:
		return "Unknown"
	}
}

func (us UserStatus) Ensure() UserStatus {
	switch us {
	case UserStatusActive, UserStatusUnverified:
		return us
	default:
		return UserStatusUnknown
	}
}
