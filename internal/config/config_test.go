package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.StatsSeason != "2025-2026" {
		t.Fatalf("unexpected StatsSeason: %q", cfg.StatsSeason)
	}
	if got := cfg.StatsSeasonStart.Format("2006-01-02"); got != "2025-08-16" {
		t.Fatalf("unexpected StatsSeasonStart: %s", got)
	}
	if len(cfg.RefreshHours) != 2 || cfg.RefreshHours[0] != 5 || cfg.RefreshHours[1] != 17 {
		t.Fatalf("unexpected RefreshHours: %v", cfg.RefreshHours)
	}
	if cfg.FPLBootstrapTTL != 5*time.Minute {
		t.Fatalf("unexpected FPLBootstrapTTL: %s", cfg.FPLBootstrapTTL)
	}
	if cfg.DBURL != "" {
		t.Fatalf("DBURL should default to empty, got %q", cfg.DBURL)
	}
	if !cfg.SwaggerEnabled {
		t.Fatalf("expected SwaggerEnabled=true in dev by default")
	}
	if !cfg.StatsCircuit.Enabled || cfg.StatsCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected StatsCircuit defaults: %+v", cfg.StatsCircuit)
	}
}

func TestLoad_ProdDisablesSwaggerByDefault(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SwaggerEnabled {
		t.Fatalf("expected SwaggerEnabled=false in prod by default")
	}
}

func TestLoad_RefreshHours(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REFRESH_HOURS", "3, 9,21")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.RefreshHours) != 3 || cfg.RefreshHours[2] != 21 {
		t.Fatalf("unexpected RefreshHours: %v", cfg.RefreshHours)
	}
}

func TestLoad_RefreshHoursValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REFRESH_HOURS", "5,24")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range refresh hour")
	}
}

func TestLoad_HeadlineRequiresKeyWithEndpoint(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("HEADLINE_ENDPOINT", "https://generate.example.com/v1/complete")
	t.Setenv("HEADLINE_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when HEADLINE_ENDPOINT is set without HEADLINE_API_KEY")
	}
}

func TestLoad_CircuitOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FPL_CIRCUIT_ENABLED", "false")
	t.Setenv("FPL_CIRCUIT_FAILURE_COUNT", "9")
	t.Setenv("FPL_CIRCUIT_OPEN_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FPLCircuit.Enabled {
		t.Fatalf("expected FPL circuit disabled")
	}
	if cfg.FPLCircuit.FailureThreshold != 9 {
		t.Fatalf("unexpected FailureThreshold: %d", cfg.FPLCircuit.FailureThreshold)
	}
	if cfg.FPLCircuit.OpenTimeout != 45*time.Second {
		t.Fatalf("unexpected OpenTimeout: %s", cfg.FPLCircuit.OpenTimeout)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/123"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/123" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}
