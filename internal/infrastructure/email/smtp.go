package email

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"gopkg.in/gomail.v2"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/metrics"
)

const transportName = "smtp"

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Insecure bool // skip certificate verification on STARTTLS

	Timeout time.Duration // per attempt
	Retries uint64
	Backoff time.Duration
}

// dialer is the part of *gomail.Dialer the notifier needs.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier delivers templated notifications over SMTP.
type SMTPNotifier struct {
	lg     zerolog.Logger
	dialer dialer

	from     string
	fromName string
	timeout  time.Duration
	retries  uint64
	backoff  time.Duration
}

func NewSMTPNotifier(cfg SMTPConfig, lg zerolog.Logger) *SMTPNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Insecure {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true} //nolint:gosec
	}
	return newSMTPNotifier(cfg, d, lg)
}

func newSMTPNotifier(cfg SMTPConfig, d dialer, lg zerolog.Logger) *SMTPNotifier {
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &SMTPNotifier{
		lg:       lg.With().Str("component", "smtp_notifier").Logger(),
		dialer:   d,
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  cfg.Timeout,
		retries:  cfg.Retries,
		backoff:  backoff,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg account.Notification) (err error) {
	defer func() { metrics.ObserveNotification(transportName, err) }()

	if strings.TrimSpace(msg.To) == "" {
		return PermanentError{msg: "missing recipient"}
	}
	subject, body, err := Render(msg.Template, msg.Substitutions)
	if err != nil {
		return PermanentError{msg: err.Error()}
	}

	attempt := 0
	err = retry.Do(ctx, retry.WithMaxRetries(n.retries, retry.NewExponential(n.backoff)),
		func(ctx context.Context) error {
			attempt++
			metrics.NotificationAttemptsTotal.WithLabelValues(transportName).Inc()

			err := n.sendOnce(ctx, n.message(msg.To, subject, body))
			if err == nil {
				return nil
			}
			n.lg.Warn().Err(err).Int("attempt", attempt).Str("template", msg.Template).Msg("smtp send failed")

			var perm PermanentError
			if errors.As(err, &perm) {
				return err
			}
			return retry.RetryableError(err)
		},
	)
	if err != nil {
		return err
	}

	n.lg.Info().Str("template", msg.Template).Int("attempts", attempt).Msg("smtp send ok")
	return nil
}

func (n *SMTPNotifier) message(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.from, n.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

// sendOnce bounds one attempt by the configured timeout. gomail has no
// context support, so an abandoned dial finishes in the background.
func (n *SMTPNotifier) sendOnce(ctx context.Context, m *gomail.Message) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- n.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil && containsAny(err.Error(), "535", "5.7.8", "550", "553", "Username and Password not accepted") {
			return PermanentError{msg: "smtp rejected: " + err.Error()}
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func containsAny(s string, subs ...string) bool {
	for _, x := range subs {
		if x != "" && strings.Contains(s, x) {
			return true
		}
	}
	return false
}

// PermanentError marks a failure that retrying cannot fix (auth, bad recipient).
type PermanentError struct{ msg string }

func (e PermanentError) Error() string { return e.msg }
