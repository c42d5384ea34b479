// Package config loads the leaderboard service settings from environment
// variables. Every setting has a default; malformed values and values out of
// range are reported together by Load so a bad deployment fails in one pass.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port              string        // PORT, just the number
	ReadTimeout       time.Duration // READ_TIMEOUT
	ReadHeaderTimeout time.Duration // READ_HEADER_TIMEOUT
	WriteTimeout      time.Duration // WRITE_TIMEOUT
	IdleTimeout       time.Duration // IDLE_TIMEOUT
	MaxHeaderBytes    int           // MAX_HEADER_BYTES
	GinMode           string        // GIN_MODE: debug|release|test
}

// Addr returns the listen address for Port.
func (s ServerConfig) Addr() string { return ":" + s.Port }

// LogConfig controls the global zerolog logger.
type LogConfig struct {
	Level  string // LOG_LEVEL: debug|info|warn|error|fatal|panic
	Pretty bool   // LOG_PRETTY, console output for local runs
}

// APIConfig shapes the public routes.
type APIConfig struct {
	BasePath       string        // API_BASE_PATH, always "/"-prefixed
	SwaggerEnabled bool          // SWAGGER_ENABLED
	IdempotencyTTL time.Duration // IDEMPOTENCY_TTL, replay window of an Idempotency-Key
}

// RedisConfig defines the connection to the ranking store.
//
// URL may be empty: the server still starts and every store-backed request
// fails with a 500 until the variable is provided.
type RedisConfig struct {
	URL       string        // REDIS_URL (redis:// or rediss:// for TLS)
	Namespace string        // REDIS_NS, prefix for every key ("<ns>:<key>")
	Timeout   time.Duration // REDIS_TIMEOUT, dial/read/write timeout
	PoolSize  int           // REDIS_POOL_SIZE, 0 keeps the client default
}

// RateConfig sizes the per-client token bucket.
type RateConfig struct {
	RPS   float64 // RATE_RPS, tokens per second
	Burst int     // RATE_BURST, bucket size
}

// CORSConfig lists the origins echoed back to browsers. Empty allows any.
type CORSConfig struct {
	AllowedOrigins []string // CORS_ALLOWED_ORIGINS, comma separated
}

// SecurityConfig controls transport security headers.
type SecurityConfig struct {
	EnableHSTS bool          // ENABLE_HSTS
	HSTSMaxAge time.Duration // HSTS_MAX_AGE
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	API      APIConfig
	Redis    RedisConfig
	Rate     RateConfig
	CORS     CORSConfig
	Security SecurityConfig
	OTEL     OTELConfig
}

// MustLoad is Load for process startup: it panics on any error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment. Parse failures and validation failures are
// joined into a single error; the returned Config is only meaningful when
// the error is nil.
func Load() (Config, error) {
	var e env
	cfg := Config{
		Server: ServerConfig{
			Port:              strings.TrimSpace(e.str("PORT", "8080")),
			ReadTimeout:       e.duration("READ_TIMEOUT", 15*time.Second),
			ReadHeaderTimeout: e.duration("READ_HEADER_TIMEOUT", 10*time.Second),
			WriteTimeout:      e.duration("WRITE_TIMEOUT", 20*time.Second),
			IdleTimeout:       e.duration("IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:    e.integer("MAX_HEADER_BYTES", 1<<20),
			GinMode:           strings.ToLower(e.str("GIN_MODE", "release")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(e.str("LOG_LEVEL", "info")),
			Pretty: e.boolean("LOG_PRETTY", false),
		},
		API: APIConfig{
			BasePath:       normalizeBasePath(e.str("API_BASE_PATH", "/api")),
			SwaggerEnabled: e.boolean("SWAGGER_ENABLED", false),
			IdempotencyTTL: e.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			URL:       strings.TrimSpace(e.str("REDIS_URL", "")),
			Namespace: strings.TrimSpace(e.str("REDIS_NS", "lamu")),
			Timeout:   e.duration("REDIS_TIMEOUT", 5*time.Second),
			PoolSize:  e.integer("REDIS_POOL_SIZE", 0),
		},
		Rate: RateConfig{
			RPS:   e.float("RATE_RPS", 5),
			Burst: e.integer("RATE_BURST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(e.str("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: e.boolean("ENABLE_HSTS", false),
			HSTSMaxAge: e.duration("HSTS_MAX_AGE", 180*24*time.Hour),
		},
		OTEL: OTELConfig{
			Enabled:     e.boolean("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.boolean("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "lamu-leaderboard"),
			SampleRatio: e.float("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}
	if err := errors.Join(e.errs...); err != nil {
		return cfg, err
	}

	cfg.normalize()
	return cfg, cfg.validate()
}

func (c *Config) normalize() {
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		c.Server.GinMode = "release"
	}
}

func (c Config) validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of: debug, info, warn, error, fatal, panic", c.Log.Level))
	}

	s := c.Server
	check(s.Port != "", "PORT must not be empty")
	check(s.ReadTimeout > 0 && s.ReadHeaderTimeout > 0 && s.WriteTimeout > 0 && s.IdleTimeout > 0,
		"server timeouts must be positive durations")
	check(s.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	check(c.Redis.Namespace != "", "REDIS_NS must not be empty")
	check(!strings.ContainsAny(c.Redis.Namespace, " \t:"), "REDIS_NS must not contain spaces or ':'")
	check(c.Redis.Timeout > 0, "REDIS_TIMEOUT must be a positive duration")
	check(c.Redis.PoolSize >= 0, "REDIS_POOL_SIZE must be >= 0")

	check(c.Rate.RPS >= 0, "RATE_RPS must be >= 0")
	check(c.Rate.Burst >= 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.API.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

// env reads typed variables, recording malformed values instead of silently
// substituting defaults. Unset and empty variables take the default.
type env struct {
	errs []error
}

func (e *env) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) fail(k, v, kind string) {
	e.errs = append(e.errs, fmt.Errorf("%s: %q is not a valid %s", k, v, kind))
}

func (e *env) str(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func (e *env) integer(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(k, v, "integer")
		return def
	}
	return i
}

func (e *env) float(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(k, v, "number")
		return def
	}
	return f
}

func (e *env) boolean(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	e.fail(k, v, "boolean")
	return def
}

func (e *env) duration(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(k, v, "duration")
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath yields "/" or a "/"-prefixed path without a trailing slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
