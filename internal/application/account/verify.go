package account

import (
	"context"
	"strconv"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// ToggleVerification flips is_verified regardless of password state and
// returns the new value.
func (s *Service) ToggleVerification(ctx context.Context, userID int64) (bool, error) {
	const action = "account.toggle_verification"

	audit := s.auditor(ctx, action, map[string]string{"user_id": idString(userID)})

	if userID <= 0 {
		err := domain.ErrInvalidField("id", "must be a positive integer")
		audit("error", err, nil)
		return false, err
	}

	verified, found, err := s.users.ToggleVerified(ctx, userID)
	if err != nil {
		audit("error", err, nil)
		return false, err
	}
	if !found {
		err := domain.ErrUserNotFound()
		audit("error", err, nil)
		return false, err
	}

	audit("success", nil, map[string]string{"is_verified": strconv.FormatBool(verified)})
	return verified, nil
}
