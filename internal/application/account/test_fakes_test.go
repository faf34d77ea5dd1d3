package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	nextID int64
	byID   map[int64]domain.User

	// injected errors (if set, method returns error)
	insertErr   error
	listErr     error
	findErr     error
	redeemErr   error
	updatePwErr error
	toggleErr   error
	profileErr  error

	// collisions makes the next N inserts fail with token_collision
	collisions int

	inserts int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[int64]domain.User{}}
}

func (f *fakeUserRepo) put(u domain.User) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) get(id int64) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeUserRepo) countUsername(username string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.byID {
		if u.Username == username {
			n++
		}
	}
	return n
}

func (f *fakeUserRepo) Insert(ctx context.Context, u domain.User) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inserts++
	if f.insertErr != nil {
		return 0, false, f.insertErr
	}
	if f.collisions > 0 {
		f.collisions--
		return 0, false, domain.ErrTokenCollision()
	}
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return 0, false, nil
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return u.ID, true, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (domain.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return domain.User{}, false, f.findErr
	}
	u, ok := f.byID[id]
	return u, ok, nil
}

func (f *fakeUserRepo) FindIDByEmail(ctx context.Context, email string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return 0, false, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u.ID, true, nil
		}
	}
	return 0, false, nil
}

func (f *fakeUserRepo) FindRoleByUserToken(ctx context.Context, userToken string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return "", false, f.findErr
	}
	for _, u := range f.byID {
		if u.UserToken == userToken {
			return u.Role, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeUserRepo) RedeemSetupToken(ctx context.Context, token, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.redeemErr != nil {
		return false, f.redeemErr
	}
	for id, u := range f.byID {
		if u.PasswordRequestToken != "" && u.PasswordRequestToken == token {
			u.PasswordHash = hash
			u.PasswordRequestToken = ""
			u.IsVerified = true
			f.byID[id] = u
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwErr != nil {
		return false, f.updatePwErr
	}
	u, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = hash
	f.byID[id] = u
	return true, nil
}

func (f *fakeUserRepo) ToggleVerified(ctx context.Context, id int64) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.toggleErr != nil {
		return false, false, f.toggleErr
	}
	u, ok := f.byID[id]
	if !ok {
		return false, false, nil
	}
	u.IsVerified = !u.IsVerified
	f.byID[id] = u
	return u.IsVerified, true, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, p domain.Profile) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.profileErr != nil {
		return false, f.profileErr
	}
	found := false
	for id, u := range f.byID {
		if u.Email == p.Email {
			u.FirstName = p.FirstName
			u.LastName = p.LastName
			f.byID[id] = u
			found = true
		}
	}
	return found, nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash != "" && hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

// fakeTokens yields tok-000001, tok-000002, ... padded to 32 chars.
type fakeTokens struct {
	mu  sync.Mutex
	n   int
	err error
}

func (g *fakeTokens) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return "", g.err
	}
	g.n++
	s := fmt.Sprintf("tok%06d", g.n)
	return s + strings.Repeat("x", 32-len(s)), nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []Notification
}

func (n *fakeNotifier) Send(ctx context.Context, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, msg)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

/*
Service factory for tests
*/

type testDeps struct {
	users    *fakeUserRepo
	hasher   *fakeHasher
	tokens   *fakeTokens
	notifier *fakeNotifier
	audits   *[]auditEntry
}

func newSvcForTest(t *testing.T) (*Service, testDeps) {
	t.Helper()

	d := testDeps{
		users:    newFakeUserRepo(),
		hasher:   &fakeHasher{},
		tokens:   &fakeTokens{},
		notifier: &fakeNotifier{},
		audits:   &[]auditEntry{},
	}

	var mu sync.Mutex
	svc := NewService(d.users, d.hasher, d.tokens, d.notifier, Config{
		SetupBaseURL: "https://desk.test/",
	}).WithAudit(func(ctx context.Context, action string, fields map[string]string) {
		cp := map[string]string{}
		for k, v := range fields {
			cp[k] = v
		}
		mu.Lock()
		*d.audits = append(*d.audits, auditEntry{action: action, fields: cp})
		mu.Unlock()
	})

	// sanity check: no nil ports
	if svc == nil {
		t.Fatalf("svc is nil")
	}

	return svc, d
}

/*
Small assertions
*/

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domainCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func lastAudit(audits *[]auditEntry) (auditEntry, bool) {
	if audits == nil || len(*audits) == 0 {
		return auditEntry{}, false
	}
	return (*audits)[len(*audits)-1], true
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	e, ok := lastAudit(audits)
	if !ok {
		t.Fatalf("expected audit entry, got none")
	}
	if e.action != wantAction {
		t.Fatalf("expected audit action %q, got %q", wantAction, e.action)
	}
	return e
}

func requireAuditField(t *testing.T, e auditEntry, k, want string) {
	t.Helper()
	got := strings.TrimSpace(e.fields[k])
	if got != want {
		t.Fatalf("expected audit field %q=%q, got %q (all=%v)", k, want, got, e.fields)
	}
}
