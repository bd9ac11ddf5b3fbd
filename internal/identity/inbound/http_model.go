package inbound

import (
	"strconv"
	"time"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
)

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Profession string `json:"profession"`
}

type RegisterResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ExpiresIn int64  `json:"expires_in"`
}

func (RegisterResponse) Message() string {
	return "Registration successful, please check your email for the OTP"
}

func (RegisterResponse) StatusCode() int {
	return 201
}

type RegisterVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"otp"`
}

type RegisterResendRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

func (LoginResponse) Message() string {
	return "Login successful"
}

type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Profession string     `json:"profession"`
	Status     string     `json:"status"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toUser(u entity.User) User {
	return User{
		ID:         strconv.FormatInt(u.ID, 10),
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		Profession: u.Profession,
		Status:     u.Status.String(),
		VerifiedAt: u.VerifiedAt,
		CreatedAt:  u.CreatedAt,
	}
}

type UserListResponse struct {
	Users []User `json:"users"`
	page  int32
	size  int32
	total int64
}

func (UserListResponse) Message() string {
	return "Users retrieved successfully"
}

func (r UserListResponse) Meta() map[string]any {
	return map[string]any{"page": r.page, "size": r.size, "total": r.total}
}

type UserUpdateRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Profession string `json:"profession"`
}

type UserResponse struct {
	User
}

func (UserResponse) Message() string {
	return "User updated successfully"
}
