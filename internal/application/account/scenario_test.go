package account

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
)

var alnum32 = regexp.MustCompile(`^[A-Za-z0-9]{32}$`)

// Exercises the lifecycle with the real hasher and token generator.
func TestScenario_CreateThenRedeem(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	svc := NewService(users, hasher, security.NewTokenGenerator(), notifier, Config{
		SetupBaseURL: "https://desk.test",
	})
	ctx := context.Background()

	res, err := svc.CreateAccount(ctx, CreateInput{
		FirstName: "A", LastName: "B", Email: "a@b.com", Username: "ab1", Role: "agent",
	})
	require.NoError(t, err)
	require.True(t, res.Created)

	u := users.get(res.ID)
	assert.Empty(t, u.PasswordHash)
	assert.False(t, u.IsVerified)
	assert.Regexp(t, alnum32, u.PasswordRequestToken)
	assert.Regexp(t, alnum32, u.UserToken)
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, "https://desk.test/password-create?t="+u.PasswordRequestToken,
		notifier.sent[0].Substitutions[SubstSetupLink])

	require.NoError(t, svc.RedeemSetupToken(ctx, u.PasswordRequestToken, "Secr3t!"))

	u = users.get(res.ID)
	assert.True(t, u.IsVerified)
	assert.Empty(t, u.PasswordRequestToken)
	assert.NoError(t, hasher.Compare(u.PasswordHash, "Secr3t!"))
	assert.Error(t, hasher.Compare(u.PasswordHash, "wrong"))

	role, err := svc.LookupRoleByToken(ctx, u.UserToken)
	require.NoError(t, err)
	assert.Equal(t, "agent", role)
}

func TestScenario_DuplicateCreate(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := NewService(users, security.NewBcryptHasher(bcrypt.MinCost), security.NewTokenGenerator(), &fakeNotifier{}, Config{
		SetupBaseURL: "https://desk.test",
	})
	ctx := context.Background()
	in := CreateInput{FirstName: "D", LastName: "U", Email: "d@u.com", Username: "dup"}

	first, err := svc.CreateAccount(ctx, in)
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := svc.CreateAccount(ctx, in)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, 1, users.countUsername("dup"))

	list, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
