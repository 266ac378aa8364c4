package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/noah-isme/quotepay/internal/config"
	"github.com/noah-isme/quotepay/internal/health"
	"github.com/noah-isme/quotepay/internal/obs"
	"github.com/noah-isme/quotepay/internal/pix"
	"github.com/noah-isme/quotepay/internal/quote"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	}

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), cfg.Tracing())
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	builder := pix.NewBuilder(cfg.Payee())
	if !builder.Configured() {
		logger.Warn().Msg("PIX_KEY not set; quotes will carry a placeholder payload")
	}
	quoteService := &quote.Service{
		Fee:     cfg.Fee(),
		Builder: builder,
		Logger:  logger.With().Str("component", "quote").Logger(),
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBucketsMS), nil)
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: newRouter(routerConfig{
			Config:  cfg,
			Logger:  logger,
			Metrics: httpMetrics,
			Tracing: tracingEnabled,
			Quotes:  quote.NewHandler(quote.HandlerConfig{Service: quoteService}),
			Health:  health.Handler{Payee: builder},
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Bool("pix_configured", builder.Configured()).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}
