package account

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// ChangePassword replaces the stored hash after proving the current password.
// The new password may equal the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	const action = "account.change_password"

	audit := s.auditor(ctx, action, map[string]string{"user_id": idString(userID)})

	if currentPassword == "" || newPassword == "" {
		err := domain.ErrMissingFields("All fields are required.", "current_password", "new_password")
		audit("error", err, nil)
		return err
	}
	if userID <= 0 {
		err := domain.ErrInvalidField("user_id", "must be a positive integer")
		audit("error", err, nil)
		return err
	}
	if err := checkPassword("new_password", newPassword); err != nil {
		audit("error", err, nil)
		return err
	}

	u, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		audit("error", err, nil)
		return err
	}
	if !found {
		err := domain.ErrUserNotFound()
		audit("error", err, nil)
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, currentPassword); err != nil {
		derr := domain.ErrCurrentPasswordIncorrect()
		audit("error", derr, nil)
		return derr
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		err = domain.ErrHashFailed(err)
		audit("error", err, nil)
		return err
	}

	updated, err := s.users.UpdatePasswordHash(ctx, userID, hash)
	if err != nil {
		audit("error", err, nil)
		return err
	}
	if !updated {
		// deleted between read and write
		err := domain.ErrUserNotFound()
		audit("error", err, nil)
		return err
	}

	audit("success", nil, nil)
	return nil
}

// VerifyPassword checks a candidate password against the account's stored
// hash. Accounts without a password never verify.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) (bool, error) {
	u, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, domain.ErrUserNotFound()
	}
	if !u.HasPassword() || password == "" {
		return false, nil
	}
	return s.hasher.Compare(u.PasswordHash, password) == nil, nil
}
