package postgres

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type SeederAccounts interface {
	CreateAccount(ctx context.Context, in account.CreateInput) (account.CreateResult, error)
}

// SeedAdmin provisions the first administrator as a placeholder account.
// The invite goes through the configured notifier like any other account,
// so a development setup with the log notifier prints the setup link.
// Safe to run on every start: an existing "admin" username is a no-op.
func SeedAdmin(ctx context.Context, accounts SeederAccounts, email string, log zerolog.Logger) {
	res, err := accounts.CreateAccount(ctx, account.CreateInput{
		FirstName: "Admin",
		LastName:  "User",
		Email:     email,
		Username:  "admin",
		Role:      string(domain.RoleAdmin),
	})
	if err != nil {
		log.Warn().Err(err).Str("component", "seed").Msg("admin seed failed")
		return
	}
	if !res.Created {
		log.Debug().Str("component", "seed").Msg("admin already present")
		return
	}
	log.Info().Str("component", "seed").Int64("user_id", res.ID).Msg("admin placeholder seeded")
}
