package account

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// ListAccounts returns every account without secrets. An empty directory is
// reported as no_users.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.Summary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.ErrNoUsers()
	}

	out := make([]domain.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

func (s *Service) LookupIDByEmail(ctx context.Context, email string) (int64, error) {
	email = domain.NormalizeEmail(email)
	// an empty query is a miss, like any unknown address
	if email == "" {
		return 0, domain.ErrUserNotFound()
	}

	id, found, err := s.users.FindIDByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domain.ErrUserNotFound()
	}
	return id, nil
}

func (s *Service) LookupRoleByToken(ctx context.Context, userToken string) (string, error) {
	userToken = strings.TrimSpace(userToken)
	if userToken == "" {
		return "", domain.ErrUserNotFound()
	}

	role, found, err := s.users.FindRoleByUserToken(ctx, userToken)
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.ErrUserNotFound()
	}
	return role, nil
}

// UpdateProfile changes the display names of the account(s) registered
// under p.Email and echoes the stored values back.
func (s *Service) UpdateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	const action = "account.update_profile"

	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = domain.NormalizeEmail(p.Email)

	audit := s.auditor(ctx, action, map[string]string{"email": p.Email})

	if p.FirstName == "" || p.LastName == "" {
		err := domain.ErrMissingFields("First name and last name are required", "first_name", "last_name")
		audit("error", err, nil)
		return domain.Profile{}, err
	}
	if p.Email == "" {
		err := domain.ErrMissingField("email")
		audit("error", err, nil)
		return domain.Profile{}, err
	}

	found, err := s.users.UpdateProfile(ctx, p)
	if err != nil {
		audit("error", err, nil)
		return domain.Profile{}, err
	}
	if !found {
		err := domain.ErrUserNotFound()
		audit("error", err, nil)
		return domain.Profile{}, err
	}

	audit("success", nil, nil)
	return p, nil
}
