package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/audit"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/email"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/workspace"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	http_handlers "github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB   func(addr string, debug bool) (*sql.DB, error)
	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) *redis.Client

	// NewNotifier returns the invite transport and its cleanup.
	NewNotifier func(cfg *config.Config) (account.Notifier, func(), error)

	NewTaskCreator func(cfg *config.Config) workspace.TaskCreator

	NewRouter func(router.Deps) (http.Handler, error)
}

// store is what the service and the readiness probe need from a repo.
type store interface {
	account.UserRepo
	Ping(ctx context.Context) error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) store
	var repo store
	if cfg.DBAddr != "" {
		db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		if cfg.RunMigrations && deps.Migrate != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			err := deps.Migrate(ctx, db)
			cancel()
			if err != nil {
				runCleanup(cleanupFns)
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		repo = postgres.NewUserRepo(db)
	} else {
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory store")
		repo = memory.NewUserRepo()
	}

	// 2) redis (best-effort)
	var limiter middleware.RateLimiter
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(context.Background()); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; role cache and shared rate limits disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })

			repo = redis.NewCachedUserRepo(repo, c, cfg.RoleCacheTTL)
			limiter = redis.NewFixedWindowLimiter(c)
		}
	}

	// 3) notifier
	notifier, closeNotifier, err := deps.NewNotifier(cfg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	if closeNotifier != nil {
		cleanupFns = append(cleanupFns, closeNotifier)
	}

	// 4) service
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewTokenGenerator()
	auditLog := audit.New(logger.Logger)
	svcCfg := account.Config{SetupBaseURL: cfg.SetupBaseURL()}

	accountSvc := account.NewService(repo, hasher, tokens, notifier, svcCfg).
		WithAudit(auditLog.Record)

	// seed (non-production only); the invite is logged, never mailed
	if !cfg.IsProduction() && cfg.SeedAdminEmail != "" {
		seeder := account.NewService(repo, hasher, tokens, memory.NewLogNotifier(logger.Logger).RevealLinks(), svcCfg).
			WithAudit(auditLog.Record)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		postgres.SeedAdmin(ctx, seeder, cfg.SeedAdminEmail, logger.Logger)
		cancel()
	}

	// 5) handlers + middleware
	accountH := http_handlers.NewAccountHandler(accountSvc)
	taskH := http_handlers.NewTaskHandler(deps.NewTaskCreator(cfg))
	healthH := http_handlers.NewHealthHandler(repo)

	rl := func(key string, limit int) func(http.Handler) http.Handler {
		return middleware.RateLimitFixedWindow(
			limiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   time.Minute,
			},
			response.WriteError,
		)
	}

	// 6) router
	mux, err := deps.NewRouter(router.Deps{
		Health:  healthH,
		Account: accountH,
		Task:    taskH,

		APIPrefix:          cfg.APIPrefix,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,

		RLWrite:    rl("account.write", cfg.RLWritePerMinute),
		RLPassword: rl("account.password", cfg.RLPasswordPerMinute),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 7) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string, debug bool) (*sql.DB, error) {
			return config.NewDB(addr, debug, logger.Logger)
		},
		Migrate: func(ctx context.Context, db *sql.DB) error {
			return postgres.Migrate(ctx, db, logger.Logger)
		},
		NewRedis: func(addr, password string, db int) *redis.Client {
			return redis.New(addr, password, db)
		},
		NewNotifier: newNotifier,
		NewTaskCreator: func(cfg *config.Config) workspace.TaskCreator {
			return workspace.NewNotionClient(workspace.NotionConfig{
				BaseURL:    cfg.NotionAPIURL,
				APIKey:     cfg.NotionAPIKey,
				DatabaseID: cfg.NotionDatabaseID,
			})
		},
		NewRouter: router.New,
	}
}

func newNotifier(cfg *config.Config) (account.Notifier, func(), error) {
	switch cfg.MailTransport {
	case config.MailTransportSMTP:
		return email.NewSMTPNotifier(email.SMTPConfig{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPassword,
			From:     cfg.DefaultMail,
			FromName: cfg.MailFromName,
			Insecure: cfg.EmailInsecure,
			Timeout:  cfg.MailTimeout,
			Retries:  cfg.MailRetries,
		}, logger.Logger), nil, nil

	case config.MailTransportRabbitMQ:
		pub, err := rabbitmq_pub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange, logger.Logger)
		if err != nil {
			if cfg.IsProduction() {
				return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
			}
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; invites will only be logged")
			return memory.NewLogNotifier(logger.Logger), nil, nil
		}
		return pub, func() { _ = pub.Close() }, nil

	case config.MailTransportLog:
		return memory.NewLogNotifier(logger.Logger), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
