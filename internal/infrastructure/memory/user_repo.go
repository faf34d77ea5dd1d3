package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// UserRepo is an in-process credential store for development and tests.
// Every method holds the lock for its whole body, which gives the same
// single-row atomicity the SQL store gets from its constraints.
type UserRepo struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]domain.User
	byUsername map[string]int64
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:       make(map[int64]domain.User),
		byUsername: make(map[string]int64),
	}
}

func (r *UserRepo) Insert(ctx context.Context, u domain.User) (int64, bool, error) {
	u.Email = domain.NormalizeEmail(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return 0, false, domain.ErrMissingField("username")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[u.Username]; exists {
		return 0, false, nil
	}
	for _, existing := range r.byID {
		if existing.UserToken == u.UserToken ||
			(u.PasswordRequestToken != "" && existing.PasswordRequestToken == u.PasswordRequestToken) {
			return 0, false, domain.ErrTokenCollision()
		}
	}

	r.nextID++
	u.ID = r.nextID
	r.byID[u.ID] = u
	r.byUsername[u.Username] = u.ID
	return u.ID, true, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (domain.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	return u, ok, nil
}

func (r *UserRepo) FindIDByEmail(ctx context.Context, email string) (int64, bool, error) {
	email = domain.NormalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var best int64
	for id, u := range r.byID {
		if u.Email == email && (best == 0 || id < best) {
			best = id
		}
	}
	return best, best != 0, nil
}

func (r *UserRepo) FindRoleByUserToken(ctx context.Context, userToken string) (string, bool, error) {
	if userToken == "" {
		return "", false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.UserToken == userToken {
			return u.Role, true, nil
		}
	}
	return "", false, nil
}

func (r *UserRepo) RedeemSetupToken(ctx context.Context, token, hash string) (bool, error) {
	if token == "" {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.byID {
		if u.PasswordRequestToken == token {
			u.PasswordHash = hash
			u.PasswordRequestToken = ""
			u.IsVerified = true
			r.byID[id] = u
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = hash
	r.byID[id] = u
	return true, nil
}

func (r *UserRepo) ToggleVerified(ctx context.Context, id int64) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return false, false, nil
	}
	u.IsVerified = !u.IsVerified
	r.byID[id] = u
	return u.IsVerified, true, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, p domain.Profile) (bool, error) {
	p.Email = domain.NormalizeEmail(p.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for id, u := range r.byID {
		if u.Email != p.Email {
			continue
		}
		u.FirstName = p.FirstName
		u.LastName = p.LastName
		r.byID[id] = u
		found = true
	}
	return found, nil
}

func (r *UserRepo) Ping(ctx context.Context) error { return nil }
