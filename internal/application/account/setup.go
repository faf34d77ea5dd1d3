package account

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// RedeemSetupToken sets the first password of an invited account.
// The store clears the token in the same statement that stores the hash,
// so of several concurrent redemptions of one token at most one succeeds.
func (s *Service) RedeemSetupToken(ctx context.Context, token, password string) error {
	const action = "account.redeem_setup"

	token = strings.TrimSpace(token)
	audit := s.auditor(ctx, action, nil)

	if token == "" || password == "" {
		err := domain.ErrMissingFields("Token and password are required", "token", "password")
		audit("error", err, nil)
		return err
	}
	if err := checkPassword("password", password); err != nil {
		audit("error", err, nil)
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		err = domain.ErrHashFailed(err)
		audit("error", err, nil)
		return err
	}

	ok, err := s.users.RedeemSetupToken(ctx, token, hash)
	if err != nil {
		audit("error", err, nil)
		return err
	}
	if !ok {
		err := domain.ErrSetupTokenInvalid()
		audit("error", err, nil)
		return err
	}

	audit("success", nil, nil)
	return nil
}
