package audit

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/metrics"
	reqctx "github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/context"
)

// Logger provides structured audit logging for account lifecycle events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Record logs one lifecycle transition. Fields named "email" are masked.
// Failed transitions (result=error) are logged at warn level.
func (l *Logger) Record(ctx context.Context, action string, fields map[string]string) {
	ev := l.log.Info()
	if fields["result"] == "error" {
		ev = l.log.Warn()
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fields[k]
		if k == "email" {
			v = maskEmail(v)
		}
		ev = ev.Str(k, v)
	}

	ev.Str("action", action).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("account lifecycle event")

	metrics.LifecycleEventsTotal.WithLabelValues(action, fields["result"]).Inc()
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	// Show first 2 chars and domain
	at := 0
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
