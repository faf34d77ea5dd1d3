package dto

import (
	"encoding/json"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// UserView never carries password hashes or tokens.
// Verified mirrors HasPassword for clients written against the first API.
type UserView struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	IsVerified  bool       `json:"is_verified"`
	HasPassword bool       `json:"has_password"`
	Verified    bool       `json:"verified"`
	DateCreated time.Time  `json:"date_created"`
	LastLogin   *time.Time `json:"last_login"`
}

func NewUserView(s domain.Summary) UserView {
	return UserView{
		ID:          s.ID,
		Email:       s.Email,
		Username:    s.Username,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Role:        s.Role,
		IsVerified:  s.IsVerified,
		HasPassword: s.HasPassword,
		Verified:    s.HasPassword,
		DateCreated: s.DateCreated,
		LastLogin:   s.LastLogin,
	}
}

type ListUsersResponse struct {
	Users []UserView `json:"users"`
}

type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type UserIDResponse struct {
	User int64 `json:"user"`
}

type RoleResponse struct {
	Role string `json:"role"`
}

type ProfileView struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type UpdateUserResponse struct {
	Message string      `json:"message"`
	User    ProfileView `json:"user"`
}

type ToggleVerificationResponse struct {
	Message    string `json:"message"`
	IsVerified bool   `json:"is_verified"`
}

type CreateTaskResponse struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
