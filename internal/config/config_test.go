package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REPORT_TTL_SECONDS", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.ReportTTLSeconds != 30 {
		t.Fatalf("expected default report TTL 30, got %d", cfg.ReportTTLSeconds)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("expected empty DATABASE_URL when unset, got %q", cfg.DatabaseURL)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadRejectsInvalidTTL(t *testing.T) {
	t.Setenv("REPORT_TTL_SECONDS", "-5")

	cfg := Load()
	if cfg.ReportTTLSeconds != 30 {
		t.Fatalf("expected fallback TTL 30 for invalid value, got %d", cfg.ReportTTLSeconds)
	}
}
