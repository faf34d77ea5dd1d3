package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Username  string `json:"username" validate:"max=64"`
	Role      string `json:"role" validate:"max=64"`
}

func (r *CreateUserRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

type SetPasswordRequest struct {
	Token    string `json:"token" validate:"max=128"`
	Password string `json:"password"`
}

func (r *SetPasswordRequest) Validate() error {
	return validateStruct(r)
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
}

func (r *UpdateUserRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

type ChangePasswordRequest struct {
	UserID          FlexibleID `json:"user_id" validate:"gte=0"`
	CurrentPassword string     `json:"current_password"`
	NewPassword     string     `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	if r.UserID == 0 {
		return domain.ErrMissingFields("All fields are required.", "user_id")
	}
	return validateStruct(r)
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"max=2000"`
	Description string `json:"description" validate:"max=2000"`
}

func (r *CreateTaskRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return domain.ErrMissingField("title")
	}
	return validateStruct(r)
}

// FlexibleID accepts 12 or "12"; browser forms often send ids as strings.
type FlexibleID int64

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}

	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*id = 0
			return nil
		}
	} else {
		s = string(b)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return domain.ErrInvalidField("user_id", "must be an integer")
	}
	*id = FlexibleID(n)
	return nil
}
