package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
	if cfg.DBPath != "resolver.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Session.TTL != 7*24*time.Hour {
		t.Errorf("Session.TTL = %v, want 168h", cfg.Session.TTL)
	}
	if !cfg.Session.CookieSecure {
		t.Errorf("Session.CookieSecure must default to true")
	}
	if cfg.Telemetry.Buffer != 1024 || cfg.Telemetry.FlushInterval != 5*time.Second {
		t.Errorf("telemetry defaults: %+v", cfg.Telemetry)
	}
	if cfg.Telemetry.Retention != 0 {
		t.Errorf("Retention = %v, want 0 (disabled)", cfg.Telemetry.Retention)
	}
	if cfg.RateRPS != 10 || cfg.RateBurst != 20 {
		t.Errorf("rate defaults: rps=%v burst=%d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.Session.Secret != nil {
		t.Errorf("secret must be nil when unset")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_COOKIE_SECURE", "false")
	t.Setenv("TELEMETRY_BUFFER", "42")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.GinMode != "test" || cfg.DBPath != "/tmp/x.db" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want lowercased debug", cfg.LogLevel)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("Session.TTL = %v", cfg.Session.TTL)
	}
	if cfg.Session.CookieSecure {
		t.Fatalf("CookieSecure override not applied")
	}
	if cfg.Telemetry.Buffer != 42 {
		t.Fatalf("Telemetry.Buffer = %d", cfg.Telemetry.Buffer)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_SessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", strings.Repeat("ab", 32))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Session.Secret) != 32 {
		t.Fatalf("secret length = %d, want 32", len(cfg.Session.Secret))
	}

	t.Setenv("SESSION_SECRET", "not-hex")
	if _, err := Load(); err == nil {
		t.Fatalf("non-hex secret must fail validation")
	}

	t.Setenv("SESSION_SECRET", "abcd")
	if _, err := Load(); err == nil {
		t.Fatalf("short secret must fail validation")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct{ key, val string }{
		{"LOG_LEVEL", "verbose"},
		{"READ_TIMEOUT", "-5s"},
		{"SESSION_TTL", "-1h"},
		{"TELEMETRY_BUFFER", "0"},
		{"RATE_BURST", "0"},
		{"OTEL_TRACES_SAMPLER_ARG", "2"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s must fail validation", tc.key, tc.val)
			}
		})
	}
}

func TestLoad_NormalizesWarnAndGinMode(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("GIN_MODE", "bogus")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q, want release fallback", cfg.GinMode)
	}
}
