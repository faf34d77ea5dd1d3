package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	ListUsers(w http.ResponseWriter, r *http.Request)
	LookupUserID(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	SetPassword(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	ToggleVerification(w http.ResponseWriter, r *http.Request)
	Role(w http.ResponseWriter, r *http.Request)
}

type TaskHandler interface {
	CreateTask(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health  HealthHandler
	Account AccountHandler
	Task    TaskHandler

	// APIPrefix is prepended to account and task routes, e.g. "/api".
	APIPrefix          string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration

	// optional per-group limits
	RLWrite    func(http.Handler) http.Handler
	RLPassword func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Account == nil {
		return nil, fmt.Errorf("nil Account handler")
	}
	if deps.Task == nil {
		return nil, fmt.Errorf("nil Task handler")
	}
	rlWrite := orNoop(deps.RLWrite)
	rlPassword := orNoop(deps.RLPassword)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.HeaderXRequestID},
		ExposedHeaders:   []string{middleware.HeaderXRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if deps.RequestTimeout > 0 {
		r.Use(chimw.Timeout(deps.RequestTimeout))
	}

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Get("/api/status", deps.Health.Status)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	p := deps.APIPrefix

	// --- Accounts ---
	r.Get(p+"/users", deps.Account.ListUsers)
	r.Get(p+"/user-id", deps.Account.LookupUserID)
	r.Get(p+"/role", deps.Account.Role)
	r.With(rlWrite).Post(p+"/users", deps.Account.CreateUser)
	r.With(rlWrite).Put(p+"/users", deps.Account.UpdateUser)
	r.With(rlWrite).Patch(p+"/users/{id}/verify", deps.Account.ToggleVerification)

	// --- Credentials ---
	r.With(rlPassword).Post(p+"/set-password", deps.Account.SetPassword)
	r.With(rlPassword).Post(p+"/change-password", deps.Account.ChangePassword)

	// --- Workspace ---
	r.With(rlWrite).Post(p+"/create-task", deps.Task.CreateTask)

	return r, nil
}

func orNoop(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
