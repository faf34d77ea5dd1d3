package domain

import (
	"strings"
	"time"
)

// User is one row of the credential store.
// PasswordRequestToken is empty while no password setup is pending.
type User struct {
	ID                   int64
	Email                string
	Username             string
	FirstName            string
	LastName             string
	PasswordHash         string
	Role                 string
	PasswordRequestToken string
	UserToken            string
	IsVerified           bool
	DateCreated          time.Time
	LastLogin            *time.Time
}

// HasPassword reports whether a password has been set.
// It is independent of IsVerified, which an admin may flip at will.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// PendingSetup reports whether an invite is waiting to be redeemed.
func (u User) PendingSetup() bool {
	return u.PasswordRequestToken != ""
}

// Summary is the display projection of a User; it never carries secrets.
type Summary struct {
	ID          int64
	Email       string
	Username    string
	FirstName   string
	LastName    string
	Role        string
	IsVerified  bool
	HasPassword bool
	DateCreated time.Time
	LastLogin   *time.Time
}

func (u User) Summary() Summary {
	return Summary{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
		HasPassword: u.HasPassword(),
		DateCreated: u.DateCreated,
		LastLogin:   u.LastLogin,
	}
}

// Profile is the subset of a User that UpdateProfile may change.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
}

// NormalizeEmail is applied on every write and lookup keyed by e-mail.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
