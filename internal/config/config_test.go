package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT",
		"MAX_HEADER_BYTES", "GIN_MODE", "LOG_LEVEL", "LOG_PRETTY", "API_BASE_PATH",
		"SWAGGER_ENABLED", "IDEMPOTENCY_TTL", "REDIS_URL", "REDIS_NS", "REDIS_TIMEOUT",
		"REDIS_POOL_SIZE", "RATE_RPS", "RATE_BURST", "CORS_ALLOWED_ORIGINS", "ENABLE_HSTS",
		"HSTS_MAX_AGE", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Config{
		Server: ServerConfig{
			Port:              "8080",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      20 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
			GinMode:           "release",
		},
		Log:      LogConfig{Level: "info"},
		API:      APIConfig{BasePath: "/api", IdempotencyTTL: 24 * time.Hour},
		Redis:    RedisConfig{Namespace: "lamu", Timeout: 5 * time.Second},
		Rate:     RateConfig{RPS: 5, Burst: 10},
		Security: SecurityConfig{HSTSMaxAge: 180 * 24 * time.Hour},
		OTEL: OTELConfig{
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "lamu-leaderboard",
			SampleRatio: 1,
		},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Fatalf("defaults mismatch:\n got %+v\nwant %+v", cfg, want)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Fatalf("Addr() = %q", cfg.Server.Addr())
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", " 9090 ")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("LOG_PRETTY", " yes ")
	t.Setenv("API_BASE_PATH", "v1/")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("IDEMPOTENCY_TTL", "48h")
	t.Setenv("REDIS_URL", "  rediss://default:pw@cache:6380/0 ")
	t.Setenv("REDIS_NS", "staging")
	t.Setenv("REDIS_TIMEOUT", "750ms")
	t.Setenv("REDIS_POOL_SIZE", "32")
	t.Setenv("RATE_RPS", "0.5")
	t.Setenv("RATE_BURST", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "off")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != "9090" || cfg.Server.ReadTimeout != 2*time.Second ||
		cfg.Server.MaxHeaderBytes != 8192 || cfg.Server.GinMode != "release" {
		t.Fatalf("server: %+v", cfg.Server)
	}
	if cfg.Log != (LogConfig{Level: "warn", Pretty: true}) {
		t.Fatalf("log: %+v", cfg.Log)
	}
	if cfg.API != (APIConfig{BasePath: "/v1", SwaggerEnabled: true, IdempotencyTTL: 48 * time.Hour}) {
		t.Fatalf("api: %+v", cfg.API)
	}
	want := RedisConfig{URL: "rediss://default:pw@cache:6380/0", Namespace: "staging", Timeout: 750 * time.Millisecond, PoolSize: 32}
	if cfg.Redis != want {
		t.Fatalf("redis: %+v", cfg.Redis)
	}
	if cfg.Rate != (RateConfig{RPS: 0.5, Burst: 3}) {
		t.Fatalf("rate: %+v", cfg.Rate)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors: %#v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Security != (SecurityConfig{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}) {
		t.Fatalf("security: %+v", cfg.Security)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Insecure || cfg.OTEL.SampleRatio != 0.25 {
		t.Fatalf("otel: %+v", cfg.OTEL)
	}
}

func TestLoad_MalformedValuesAreReported(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_RPS", "x")
	t.Setenv("RATE_BURST", "nope")
	t.Setenv("LOG_PRETTY", "maybe")
	t.Setenv("REDIS_TIMEOUT", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("expected parse errors")
	}
	for _, want := range []string{
		`RATE_RPS: "x" is not a valid number`,
		`RATE_BURST: "nope" is not a valid integer`,
		`LOG_PRETTY: "maybe" is not a valid boolean`,
		`REDIS_TIMEOUT: "soon" is not a valid duration`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name, key, val, want string
	}{
		{"log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"blank port", "PORT", "   ", "PORT must not be empty"},
		{"zero timeout", "READ_TIMEOUT", "0s", "server timeouts must be positive"},
		{"header bytes", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"blank namespace", "REDIS_NS", "   ", "REDIS_NS must not be empty"},
		{"namespace with space", "REDIS_NS", "my ns", "REDIS_NS must not contain"},
		{"namespace with colon", "REDIS_NS", "a:b", "REDIS_NS must not contain"},
		{"redis timeout", "REDIS_TIMEOUT", "0s", "REDIS_TIMEOUT"},
		{"pool size", "REDIS_POOL_SIZE", "-2", "REDIS_POOL_SIZE"},
		{"negative rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
		{"hsts age", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"idempotency ttl", "IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
		{"sample ratio", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_JoinsEveryValidationError(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_BURST", "0")
	t.Setenv("IDEMPOTENCY_TTL", "0s")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "RATE_BURST") || !strings.Contains(err.Error(), "IDEMPOTENCY_TTL") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on invalid config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LOG_LEVEL", "verbose")
		defer func() {
			if recover() == nil {
				t.Fatal("MustLoad should panic")
			}
		}()
		_ = MustLoad()
	})
	t.Run("defaults load", func(t *testing.T) {
		clearEnv(t)
		if cfg := MustLoad(); cfg.API.BasePath != "/api" {
			t.Fatalf("unexpected base path %q", cfg.API.BasePath)
		}
	})
}

func TestSplitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV(\"\") = %#v, want nil", out)
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV = %#v", got)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	for in, want := range map[string]string{
		"":        "/",
		" / ":     "/",
		"v1":      "/v1",
		"/v1/":    "/v1",
		"/api":    "/api",
		"//a/b//": "/a/b",
	} {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
