package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/velocimech/velocimech-backend/api/responses"
	"github.com/velocimech/velocimech-backend/pkg/config"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// PublicRateLimit throttles a public surface per client IP. The quote and
// booking endpoints sit behind it; the identity lookup carries its own
// spend-based quotas on top.
func PublicRateLimit(scope string, cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.PublicIPLimit <= 0 || cfg.PublicWindow <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := ClientIP(r)
			key := fmt.Sprintf("%s:ip:%s", scope, ip)
			allowed, count, err := store.FixedWindowAllow(ctx, key, cfg.PublicIPLimit, cfg.PublicWindow)
			if err != nil {
				// An unreachable limiter must not take the public API down
				// with it.
				if logg != nil {
					logg.Error(ctx, "rate_limit.store_unavailable", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"scope":          scope,
						"ip":             ip,
						"attempts":       count,
						"limit":          cfg.PublicIPLimit,
						"window_seconds": int(cfg.PublicWindow.Seconds()),
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP resolves the caller address, preferring proxy headers the load
// balancer sets.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
