package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/quotepay/internal/obs"
	"github.com/noah-isme/quotepay/internal/pix"
	"github.com/noah-isme/quotepay/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	CORSAllowedOrigins []string

	PixKey          string
	PixMerchantName string
	PixMerchantCity string
	PixTxID         string

	FeeRate           decimal.Decimal
	FeeDefaultApplied bool

	LogFormat string
	LogLevel  string

	MetricsEnabled    bool
	MetricsNamespace  string
	MetricsBucketsMS  string
	TracingEnabled    bool
	ServiceName       string
	OTLPEndpoint      string
	TracingSampleRate float64

	SecurityHeaders bool
	HSTSEnabled     bool
	MaxBodyBytes    int64
	RateLimitPerMin int

	PprofEnabled    bool
	PprofUser       string
	PprofPass       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	feeRate, err := pricing.ParseRate(valueOrDefault(k.String("QUOTE_FEE_RATE"), "0.15"))
	if err != nil {
		return nil, fmt.Errorf("QUOTE_FEE_RATE: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		PixKey:             strings.TrimSpace(k.String("PIX_KEY")),
		PixMerchantName:    strings.TrimSpace(k.String("PIX_MERCHANT_NAME")),
		PixMerchantCity:    strings.TrimSpace(k.String("PIX_MERCHANT_CITY")),
		PixTxID:            strings.TrimSpace(k.String("PIX_TXID")),
		FeeRate:            feeRate,
		FeeDefaultApplied:  parseBool(k.String("QUOTE_FEE_DEFAULT_APPLIED"), false),
		LogFormat:          valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsEnabled:     parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace:   valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "quotepay"),
		MetricsBucketsMS:   k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:     parseBool(k.String("OBS_ENABLE_TRACING"), false),
		ServiceName:        valueOrDefault(k.String("OBS_SERVICE_NAME"), obs.DefaultServiceName),
		OTLPEndpoint:       strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampleRate:  parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		SecurityHeaders:    parseBool(k.String("SECURE_HEADERS_ENABLED"), true),
		HSTSEnabled:        parseBool(k.String("SECURE_HSTS_ENABLED"), false),
		MaxBodyBytes:       int64(parseInt(k.String("MAX_BODY_BYTES"), 1<<20)),
		RateLimitPerMin:    parseInt(k.String("RATE_LIMIT_PER_MINUTE"), 120),
		PprofEnabled:       parseBool(k.String("OBS_ENABLE_PPROF"), false),
		PprofUser:          strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
		PprofPass:          strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_PASS")),
		ShutdownTimeout:    time.Duration(parseInt(k.String("SHUTDOWN_TIMEOUT_MS"), 10000)) * time.Millisecond,
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Payee returns the payment recipient described by the PIX_* variables.
func (c *Config) Payee() pix.Payee {
	return pix.Payee{
		Key:  c.PixKey,
		Name: c.PixMerchantName,
		City: c.PixMerchantCity,
		TxID: c.PixTxID,
	}
}

// Tracing returns the tracer settings for obs.InitTracer.
func (c *Config) Tracing() obs.TracingConfig {
	return obs.TracingConfig{
		ServiceName:   c.ServiceName,
		Environment:   c.AppEnv,
		Endpoint:      c.OTLPEndpoint,
		SamplingRatio: c.TracingSampleRate,
	}
}

// Fee returns the default fee policy for quotes that do not choose one.
func (c *Config) Fee() pricing.Fee {
	return pricing.Fee{Applied: c.FeeDefaultApplied, Rate: c.FeeRate}
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
