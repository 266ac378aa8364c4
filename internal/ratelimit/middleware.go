package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/quotepay/internal/common"
)

// Limiter decides whether key may proceed within the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, resetAt time.Time, err error)
}

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Limiter Limiter
	Max     int
	// Key derives the bucket for a request; defaults to ClientIP.
	Key     func(*http.Request) string
	OnError func(error)
}

// Middleware implements the http.Handler middleware interface. Limiter
// failures let the request through.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil {
		return next
	}
	keyFn := h.Key
	if keyFn == nil {
		keyFn = ClientIP
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), keyFn(r))
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Max, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := max(int(time.Until(resetAt).Seconds()), 0)
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP keys requests by remote host. Run after middleware.RealIP so
// proxies are accounted for.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
