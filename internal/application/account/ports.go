package account

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for the credential store.
Lookup misses come back as found=false with a nil error; only store
failures are errors. Every mutation is a single-row, single-statement update.
*/
type UserRepo interface {
	// Insert stores u unless its username is taken (created=false).
	Insert(ctx context.Context, u domain.User) (id int64, created bool, err error)
	List(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, bool, error)
	FindIDByEmail(ctx context.Context, email string) (int64, bool, error)
	FindRoleByUserToken(ctx context.Context, userToken string) (string, bool, error)

	// RedeemSetupToken stores hash, clears the token and marks the row
	// verified only if the token is still pending.
	RedeemSetupToken(ctx context.Context, token, hash string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) (bool, error)
	ToggleVerified(ctx context.Context, id int64) (verified bool, found bool, err error)
	UpdateProfile(ctx context.Context, p domain.Profile) (bool, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

// TokenGenerator returns fixed-length alphanumeric secrets.
type TokenGenerator interface {
	Generate() (string, error)
}

/*
Notifier
--------
Delivers a templated message. Delivery failures are reported upward
but never undo a committed store mutation.
*/
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type Notification struct {
	To            string
	Template      string
	Substitutions map[string]string
}

const (
	TemplateSetPassword = "set_password"

	// placeholder filled with the setup link
	SubstSetupLink = "setupLink"
)
