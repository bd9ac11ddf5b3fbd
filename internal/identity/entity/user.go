package entity

import "time"

type User struct {
	ID           int64
	Email        string
	Name         string
	Phone        string
	Profession   string
	PasswordHash string
	Status       UserStatus
	VerifiedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type NewUser struct {
	ID           int64
	Email        string
	Name         string
	Phone        string
	Profession   string
	PasswordHash string
	Status       UserStatus
}

type UpdateUser struct {
	ID         int64
	Name       string
	Phone      string
	Profession string
}

type UserListFilter struct {
	Status UserStatus
	Limit  int32
	Offset int32
}
