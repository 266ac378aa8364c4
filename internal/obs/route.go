package obs

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type routeKey struct{}

// WithRoutePattern records the matched route pattern, e.g.
// "/api/v1/quotes/price", so metrics and logs share one label.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routeKey{}, pattern)
}

// RoutePatternFromContext returns the pattern stored by WithRoutePattern.
func RoutePatternFromContext(ctx context.Context) string {
	pattern, _ := ctx.Value(routeKey{}).(string)
	return pattern
}

// RoutePatternMiddleware copies chi's resolved pattern onto the context.
// Mount it inside a router group so the pattern is already known.
func RoutePatternMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				r = r.WithContext(WithRoutePattern(r.Context(), pattern))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// routeOf returns the matched pattern. chi fills its route context while
// routing, so the fallback is only complete after the handler has run.
func routeOf(r *http.Request) string {
	if route := RoutePatternFromContext(r.Context()); route != "" {
		return route
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
