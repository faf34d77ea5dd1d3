package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	MailTransportSMTP     = "smtp"
	MailTransportRabbitMQ = "rabbitmq"
	MailTransportLog      = "log"
)

type Config struct {
	// App
	Env string `env:"ENVIRONMENT" envDefault:"development"`

	// HTTP
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":3000"`
	HTTPReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"1m"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	APIPrefix          string        `env:"API_PREFIX"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// Rate limits per client IP, per minute
	RLWritePerMinute    int `env:"RATE_LIMIT_WRITE_PER_MINUTE" envDefault:"30"`
	RLPasswordPerMinute int `env:"RATE_LIMIT_PASSWORD_PER_MINUTE" envDefault:"5"`

	// Setup links
	FrontendURL     string `env:"FRONTEND_URL"`
	TestFrontendURL string `env:"TEST_FRONTEND_URL"`

	// Postgres; optional outside production (in-memory store)
	DBAddr        string `env:"DB_ADDR"`
	DBDebug       bool   `env:"DB_DEBUG"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Redis; optional (role cache + distributed rate limit)
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RoleCacheTTL  time.Duration `env:"ROLE_CACHE_TTL" envDefault:"5m"`

	// Notifications
	MailTransport string        `env:"MAIL_TRANSPORT" envDefault:"smtp"`
	EmailHost     string        `env:"EMAIL_HOST"`
	EmailPort     int           `env:"EMAIL_PORT" envDefault:"587"`
	EmailUser     string        `env:"EMAIL_USER"`
	EmailPassword string        `env:"EMAIL_PASSWORD"`
	EmailInsecure bool          `env:"EMAIL_TLS_INSECURE"`
	DefaultMail   string        `env:"DEFAULT_MAIL"`
	MailFromName  string        `env:"MAIL_FROM_NAME" envDefault:"Ticketing Desk"`
	MailTimeout   time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	MailRetries   uint64        `env:"MAIL_RETRIES" envDefault:"2"`

	RabbitURL      string `env:"RABBIT_URL"`
	RabbitExchange string `env:"RABBIT_EXCHANGE" envDefault:"account.events"`

	// Workspace (Notion)
	NotionAPIKey     string `env:"NOTION_API_KEY"`
	NotionDatabaseID string `env:"NOTION_DATABASE_ID"`
	NotionAPIURL     string `env:"NOTION_API_URL" envDefault:"https://api.notion.com/v1"`

	// Security
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Dev seed
	SeedAdminEmail string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@example.com"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil.
func Parse(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.MailTransport = strings.ToLower(strings.TrimSpace(cfg.MailTransport))
	cfg.APIPrefix = strings.TrimRight(strings.TrimSpace(cfg.APIPrefix), "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SetupBaseURL is the frontend origin used in invite links.
func (c *Config) SetupBaseURL() string {
	if c.IsProduction() {
		return c.FrontendURL
	}
	return c.TestFrontendURL
}

func (c *Config) validate() error {
	if c.Env == "" {
		return fmt.Errorf("ENVIRONMENT must not be empty")
	}

	if c.SetupBaseURL() == "" {
		if c.IsProduction() {
			return fmt.Errorf("missing required env var: FRONTEND_URL")
		}
		return fmt.Errorf("missing required env var: TEST_FRONTEND_URL")
	}

	// production never runs on the in-memory store
	if c.IsProduction() && c.DBAddr == "" {
		return fmt.Errorf("missing required env var: DB_ADDR")
	}

	switch c.MailTransport {
	case MailTransportSMTP:
		if c.EmailHost == "" {
			return fmt.Errorf("missing required env var: EMAIL_HOST")
		}
		if c.DefaultMail == "" {
			return fmt.Errorf("missing required env var: DEFAULT_MAIL")
		}
	case MailTransportRabbitMQ:
		if c.RabbitURL == "" {
			return fmt.Errorf("missing required env var: RABBIT_URL")
		}
	case MailTransportLog:
		// the log transport prints live setup links
		if c.IsProduction() {
			return fmt.Errorf("MAIL_TRANSPORT=log is not allowed in production")
		}
	default:
		return fmt.Errorf("invalid MAIL_TRANSPORT %q (want smtp, rabbitmq or log)", c.MailTransport)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.RLWritePerMinute < 0 || c.RLPasswordPerMinute < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}
