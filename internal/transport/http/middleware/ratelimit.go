package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

type RateLimiter interface {
	AllowFixedWindow(ctx context.Context, key string, limit int, window time.Duration) (redis.Decision, error)
}

type WriteErrFunc func(w http.ResponseWriter, r *http.Request, err error)

// FixedWindowConfig defines the configuration for a fixed-window rate limit.
type FixedWindowConfig struct {
	RouteKey string
	Limit    int
	Window   time.Duration
}

// RateLimitFixedWindow limits requests per client IP and route.
// With a nil limiter the window is counted in process by httprate, which is
// only correct for a single replica.
func RateLimitFixedWindow(limiter RateLimiter, cfg FixedWindowConfig, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.RouteKey == "" {
		cfg.RouteKey = "unknown"
	}

	if cfg.Limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limited := func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, r, domain.ErrRateLimited(cfg.RouteKey))
	}

	if limiter == nil {
		return httprate.Limit(
			cfg.Limit,
			cfg.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.Key(cfg.RouteKey)),
			httprate.WithLimitHandler(limited),
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bucket := windowBucket(time.Now(), cfg.Window)
			key := fmt.Sprintf("rl:%s:ip:%s:%d", cfg.RouteKey, clientIP(r), bucket)

			dec, err := limiter.AllowFixedWindow(r.Context(), key, cfg.Limit, cfg.Window)
			if err != nil {
				// fail open
				logger.WithCtx(r.Context()).Warn().Err(err).Str("route", cfg.RouteKey).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))

			if !dec.Allowed {
				if dec.RetryAfter > 0 {
					secs := int((dec.RetryAfter + time.Second - 1) / time.Second)
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				limited(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func windowBucket(now time.Time, window time.Duration) int64 {
	sec := int64(window.Seconds())
	if sec <= 0 {
		sec = 60
	}
	return now.Unix() / sec
}

// clientIP expects chi's RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return host
	}
	return addr
}
