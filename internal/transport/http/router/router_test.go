package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------- fakes ----------

type fakeHealth struct{}

func write(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
}

func (fakeHealth) Healthz(w http.ResponseWriter, r *http.Request) { write(w, "healthz") }
func (fakeHealth) Readyz(w http.ResponseWriter, r *http.Request)  { write(w, "readyz") }
func (fakeHealth) Status(w http.ResponseWriter, r *http.Request)  { write(w, "status") }

type fakeAccount struct{}

func (fakeAccount) ListUsers(w http.ResponseWriter, r *http.Request)    { write(w, "list") }
func (fakeAccount) LookupUserID(w http.ResponseWriter, r *http.Request) { write(w, "user_id") }
func (fakeAccount) CreateUser(w http.ResponseWriter, r *http.Request)   { write(w, "create") }
func (fakeAccount) UpdateUser(w http.ResponseWriter, r *http.Request)   { write(w, "update") }
func (fakeAccount) SetPassword(w http.ResponseWriter, r *http.Request)  { write(w, "set_password") }
func (fakeAccount) ChangePassword(w http.ResponseWriter, r *http.Request) {
	write(w, "change_password")
}
func (fakeAccount) ToggleVerification(w http.ResponseWriter, r *http.Request) {
	write(w, "verify")
}
func (fakeAccount) Role(w http.ResponseWriter, r *http.Request) { write(w, "role") }

type fakeTask struct{}

func (fakeTask) CreateTask(w http.ResponseWriter, r *http.Request) { write(w, "task") }

func headerMW(key, val string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, val)
			next.ServeHTTP(w, r)
		})
	}
}

func baseDeps() Deps {
	return Deps{
		Health:             fakeHealth{},
		Account:            fakeAccount{},
		Task:               fakeTask{},
		CORSAllowedOrigins: []string{"https://desk.example.com"},
	}
}

func mustRouter(t *testing.T, d Deps) http.Handler {
	t.Helper()
	h, err := New(d)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

// ---------- tests ----------

func TestNew_RequiresHandlers(t *testing.T) {
	cases := []func(*Deps){
		func(d *Deps) { d.Health = nil },
		func(d *Deps) { d.Account = nil },
		func(d *Deps) { d.Task = nil },
	}
	for i, mut := range cases {
		d := baseDeps()
		mut(&d)
		if _, err := New(d); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestRoutes(t *testing.T) {
	h := mustRouter(t, baseDeps())

	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/healthz", "healthz"},
		{http.MethodGet, "/readyz", "readyz"},
		{http.MethodGet, "/api/status", "status"},
		{http.MethodGet, "/users", "list"},
		{http.MethodPost, "/users", "create"},
		{http.MethodPut, "/users", "update"},
		{http.MethodGet, "/user-id?email=a@b.com", "user_id"},
		{http.MethodPost, "/set-password", "set_password"},
		{http.MethodPost, "/change-password", "change_password"},
		{http.MethodPatch, "/users/7/verify", "verify"},
		{http.MethodGet, "/role?token=x", "role"},
		{http.MethodPost, "/create-task", "task"},
	}

	for _, c := range cases {
		rr := serve(h, c.method, c.path)
		if rr.Code != http.StatusOK || rr.Body.String() != c.want {
			t.Fatalf("%s %s: expected 200 %q, got %d %q", c.method, c.path, c.want, rr.Code, rr.Body.String())
		}
	}
}

func TestRoutes_WrongMethodAndUnknown(t *testing.T) {
	h := mustRouter(t, baseDeps())

	if rr := serve(h, http.MethodDelete, "/users"); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if rr := serve(h, http.MethodGet, "/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAPIPrefix(t *testing.T) {
	d := baseDeps()
	d.APIPrefix = "/api"
	h := mustRouter(t, d)

	if rr := serve(h, http.MethodGet, "/api/users"); rr.Body.String() != "list" {
		t.Fatalf("expected list under prefix, got %d %q", rr.Code, rr.Body.String())
	}
	if rr := serve(h, http.MethodGet, "/api/status"); rr.Body.String() != "status" {
		t.Fatalf("expected status, got %q", rr.Body.String())
	}
	if rr := serve(h, http.MethodGet, "/users"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without prefix, got %d", rr.Code)
	}
}

func TestRateLimitGroups(t *testing.T) {
	d := baseDeps()
	d.RLWrite = headerMW("X-RL", "write")
	d.RLPassword = headerMW("X-RL", "password")
	h := mustRouter(t, d)

	cases := []struct {
		method, path, want string
	}{
		{http.MethodPost, "/users", "write"},
		{http.MethodPatch, "/users/1/verify", "write"},
		{http.MethodPost, "/create-task", "write"},
		{http.MethodPost, "/set-password", "password"},
		{http.MethodPost, "/change-password", "password"},
		{http.MethodGet, "/users", ""},
	}
	for _, c := range cases {
		rr := serve(h, c.method, c.path)
		if got := rr.Header().Get("X-RL"); got != c.want {
			t.Fatalf("%s %s: expected X-RL=%q, got %q", c.method, c.path, c.want, got)
		}
	}
}

func TestGlobalMiddleware(t *testing.T) {
	h := mustRouter(t, baseDeps())

	rr := serve(h, http.MethodGet, "/healthz")
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := mustRouter(t, baseDeps())

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "https://desk.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://desk.example.com" {
		t.Fatalf("expected allowed origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS grant, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := mustRouter(t, baseDeps())
	_ = serve(h, http.MethodGet, "/healthz")

	rr := serve(h, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "account_service_http_requests_total") {
		t.Fatalf("expected http metrics in exposition")
	}
}
