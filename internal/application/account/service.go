package account

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// maxTokenAttempts bounds regeneration when a fresh secret collides in the store.
const maxTokenAttempts = 3

// bcrypt ignores input past 72 bytes
const maxPasswordBytes = 72

type Service struct {
	users    UserRepo
	hasher   PasswordHasher
	tokens   TokenGenerator
	notifier Notifier

	audit func(ctx context.Context, action string, fields map[string]string)

	// base of the link sent in the invite, e.g. https://desk.example.com
	setupBaseURL string
}

type Config struct {
	SetupBaseURL string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	tokens TokenGenerator,
	notifier Notifier,
	cfg Config,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		audit:    func(context.Context, string, map[string]string) {},

		setupBaseURL: strings.TrimRight(strings.TrimSpace(cfg.SetupBaseURL), "/"),
	}
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// SetupLink builds the invite link for a setup token.
func (s *Service) SetupLink(token string) string {
	return s.setupBaseURL + "/password-create?t=" + token
}

// auditor returns a closure that records action with the shared base fields.
func (s *Service) auditor(ctx context.Context, action string, base map[string]string) func(result string, err error, extra map[string]string) {
	return func(result string, err error, extra map[string]string) {
		fields := map[string]string{"result": result}
		for k, v := range base {
			fields[k] = v
		}
		if err != nil {
			fields["error_code"] = domainCode(err)
		}
		for k, v := range extra {
			fields[k] = v
		}
		s.audit(ctx, action, fields)
	}
}

func checkPassword(field, pw string) error {
	if len(pw) > maxPasswordBytes {
		return domain.ErrInvalidField(field, "max 72 bytes")
	}
	return nil
}
