package models

type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusArchived UserStatus = "ARCHIVED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusArchived:
		return true
	default:
		return false
	}
}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     *string
	RoleID       int64
	Role         Role
	Status       UserStatus
}

type UserSummary struct {
	FullName *string
	Email    string
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		FullName: u.FullName,
		Email:    u.Email,
	}
}
