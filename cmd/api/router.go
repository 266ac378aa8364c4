package main

import (
	"crypto/subtle"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quotepay/internal/config"
	"github.com/noah-isme/quotepay/internal/health"
	"github.com/noah-isme/quotepay/internal/obs"
	"github.com/noah-isme/quotepay/internal/quote"
	"github.com/noah-isme/quotepay/internal/ratelimit"
	"github.com/noah-isme/quotepay/internal/security"
)

type routerConfig struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *obs.HTTPMetrics
	Tracing bool
	Quotes  *quote.Handler
	Health  health.Handler
}

func newRouter(rc routerConfig) http.Handler {
	cfg := rc.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if rc.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if rc.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: rc.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: rc.Logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.HSTSEnabled}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.PprofEnabled {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.PprofUser, cfg.PprofPass))
	}

	r.Get("/health/live", rc.Health.Live)
	r.Get("/health/ready", rc.Health.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		if cfg.RateLimitPerMin > 0 {
			v.Use(ratelimit.Handler{
				Limiter: ratelimit.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute),
				Max:     cfg.RateLimitPerMin,
				OnError: func(err error) { rc.Logger.Warn().Err(err).Msg("rate limiter unavailable") },
			}.Middleware)
		}
		v.Post("/quotes/price", rc.Quotes.Price)
		v.Route("/pix", func(p chi.Router) {
			p.Post("/payload", rc.Quotes.Payload)
			p.Post("/verify", rc.Quotes.Verify)
		})
	})
	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

// newPprofMux serves the profiles on their full /debug/pprof/ paths; chi's
// Mount keeps the prefix and pprof.Index resolves names relative to it.
func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
