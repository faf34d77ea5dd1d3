package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const DefaultRoleTTL = 5 * time.Minute

// CachedUserRepo decorates an account.UserRepo with a Redis cache for the
// user_token -> role lookup.
// - Read path: Redis -> store fallback -> Redis set
// - Misses are never cached, so a freshly created account resolves at once.
// A user token and its role never change after insert, so no write path
// needs to invalidate.
type CachedUserRepo struct {
	inner   account.UserRepo
	rdb     *goredis.Client
	ttl     time.Duration
	keyPref string
}

func NewCachedUserRepo(inner account.UserRepo, client *Client, ttl time.Duration) *CachedUserRepo {
	var rdb *goredis.Client
	if client != nil {
		rdb = client.rdb
	}
	if ttl <= 0 {
		ttl = DefaultRoleTTL
	}
	return &CachedUserRepo{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		keyPref: "role:",
	}
}

func (c *CachedUserRepo) key(userToken string) string {
	return c.keyPref + userToken
}

func (c *CachedUserRepo) FindRoleByUserToken(ctx context.Context, userToken string) (string, bool, error) {
	if userToken == "" {
		return "", false, nil
	}

	// 1) Try Redis; any redis error falls through to the store
	if c.rdb != nil {
		role, err := c.rdb.Get(ctx, c.key(userToken)).Result()
		if err == nil {
			return role, true, nil
		}
	}

	// 2) Store is the source of truth
	role, found, err := c.inner.FindRoleByUserToken(ctx, userToken)
	if err != nil || !found {
		return role, found, err
	}

	// 3) Best-effort cache fill
	if c.rdb != nil {
		_ = c.rdb.Set(ctx, c.key(userToken), role, c.ttl).Err()
	}
	return role, true, nil
}

// Ping reports the inner store's health when it exposes one.
func (c *CachedUserRepo) Ping(ctx context.Context) error {
	p, ok := c.inner.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}

/*
Below: delegate all other account.UserRepo methods to inner.
*/

func (c *CachedUserRepo) Insert(ctx context.Context, u domain.User) (int64, bool, error) {
	return c.inner.Insert(ctx, u)
}
func (c *CachedUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return c.inner.List(ctx)
}
func (c *CachedUserRepo) FindByID(ctx context.Context, id int64) (domain.User, bool, error) {
	return c.inner.FindByID(ctx, id)
}
func (c *CachedUserRepo) FindIDByEmail(ctx context.Context, email string) (int64, bool, error) {
	return c.inner.FindIDByEmail(ctx, email)
}
func (c *CachedUserRepo) RedeemSetupToken(ctx context.Context, token, hash string) (bool, error) {
	return c.inner.RedeemSetupToken(ctx, token, hash)
}
func (c *CachedUserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) (bool, error) {
	return c.inner.UpdatePasswordHash(ctx, id, hash)
}
func (c *CachedUserRepo) ToggleVerified(ctx context.Context, id int64) (bool, bool, error) {
	return c.inner.ToggleVerified(ctx, id)
}
func (c *CachedUserRepo) UpdateProfile(ctx context.Context, p domain.Profile) (bool, error) {
	return c.inner.UpdateProfile(ctx, p)
}
