package account

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Role      string
}

// CreateResult reports the new account id. Created is false when the
// username was already taken and nothing was written.
type CreateResult struct {
	ID      int64
	Created bool
}

// CreateAccount provisions an unverified account without a password and
// sends the invite carrying its setup link.
//
// When the invite cannot be delivered the account stays in place and the
// result still carries its id alongside a notification_failed error.
func (s *Service) CreateAccount(ctx context.Context, in CreateInput) (CreateResult, error) {
	const action = "account.create"

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = domain.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Role = domain.NormalizeRole(in.Role)

	audit := s.auditor(ctx, action, map[string]string{
		"email":    in.Email,
		"username": in.Username,
		"role":     in.Role,
	})

	var missing []string
	for _, f := range []struct{ name, val string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
		{"username", in.Username},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		err := domain.ErrMissingFields("All fields are required", missing...)
		audit("error", err, nil)
		return CreateResult{}, err
	}

	var (
		id      int64
		created bool
		u       domain.User
	)
	for attempt := 1; ; attempt++ {
		setupToken, err := s.tokens.Generate()
		if err != nil {
			audit("error", err, nil)
			return CreateResult{}, err
		}
		userToken, err := s.tokens.Generate()
		if err != nil {
			audit("error", err, nil)
			return CreateResult{}, err
		}

		u = domain.User{
			FirstName:            in.FirstName,
			LastName:             in.LastName,
			Email:                in.Email,
			Username:             in.Username,
			Role:                 in.Role,
			PasswordRequestToken: setupToken,
			UserToken:            userToken,
			IsVerified:           false,
			DateCreated:          time.Now().UTC(),
		}

		id, created, err = s.users.Insert(ctx, u)
		if domain.Is(err, "token_collision") && attempt < maxTokenAttempts {
			continue
		}
		if err != nil {
			audit("error", err, nil)
			return CreateResult{}, err
		}
		break
	}

	if !created {
		audit("noop", domain.ErrUsernameAlreadyExists(), nil)
		return CreateResult{Created: false}, nil
	}

	err := s.notifier.Send(ctx, Notification{
		To:       u.Email,
		Template: TemplateSetPassword,
		Substitutions: map[string]string{
			SubstSetupLink: s.SetupLink(u.PasswordRequestToken),
		},
	})
	if err != nil {
		nerr := domain.ErrNotificationFailed(err)
		audit("error", nerr, map[string]string{"user_id": idString(id)})
		return CreateResult{ID: id, Created: true}, nerr
	}

	audit("success", nil, map[string]string{"user_id": idString(id)})
	return CreateResult{ID: id, Created: true}, nil
}
