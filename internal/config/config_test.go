//go:build !integration

package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		// --- Arrange ---
		src := `
payflow:
  publication_id: pub1
  inline_cta:
    enabled: true
    config_id: cfg1
database:
  url: postgres://localhost/payflow
redis:
  url: localhost:6379
http:
  rate_window: 30s
client_config:
  defaults:
    pay_swg_version: "2"
`
		// --- Act ---
		cfg, err := Parse([]byte(src))

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("unexpected log defaults %+v", cfg.Log)
		}
		if cfg.HTTP.Addr != ":8080" || cfg.HTTP.RateWindow != 30*time.Second {
			t.Errorf("unexpected http config %+v", cfg.HTTP)
		}
		if cfg.Payflow.WindowOpenMode != "auto" || cfg.Payflow.ClientVersion != "0.0.0" {
			t.Errorf("unexpected payflow defaults %+v", cfg.Payflow)
		}
		if !cfg.Payflow.InlineCTA.Enabled || cfg.Payflow.InlineCTA.ConfigID != "cfg1" {
			t.Errorf("unexpected inline cta %+v", cfg.Payflow.InlineCTA)
		}
		if !cfg.ClientConfig.Defaults.ForceDisableNative() {
			t.Error("expected pay swg version 2 from defaults")
		}
		if cfg.Payflow.PayURL == "" || cfg.Payflow.SessionTTL != time.Hour || cfg.Payflow.SweepInterval != 5*time.Minute {
			t.Errorf("unexpected session defaults %+v", cfg.Payflow)
		}
		if cfg.Redis.TTL != time.Hour {
			t.Errorf("expected 1h redis ttl, got %v", cfg.Redis.TTL)
		}
	})

	t.Run("should require publication id", func(t *testing.T) {
		_, err := Parse([]byte("database:\n  url: x\nredis:\n  url: y\n"))
		if err == nil || !strings.Contains(err.Error(), "publication_id") {
			t.Errorf("expected publication_id error, got %v", err)
		}
	})

	t.Run("should reject unknown window open mode", func(t *testing.T) {
		src := "payflow:\n  publication_id: p\n  window_open_mode: popup\ndatabase:\n  url: x\nredis:\n  url: y\n"
		if _, err := Parse([]byte(src)); err == nil {
			t.Error("expected an error for unknown window open mode")
		}
	})

	t.Run("env overrides yaml", func(t *testing.T) {
		// --- Arrange ---
		t.Setenv("PAYFLOW_PUBLICATION_ID", "from-env")
		t.Setenv("PAYFLOW_REDIS_DB", "3")
		t.Setenv("PAYFLOW_SESSION_TTL", "90m")
		src := "payflow:\n  publication_id: from-yaml\ndatabase:\n  url: x\nredis:\n  url: y\n"

		// --- Act ---
		cfg, err := Parse([]byte(src))

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Payflow.PublicationID != "from-env" || cfg.Redis.DB != 3 || cfg.Payflow.SessionTTL != 90*time.Minute {
			t.Errorf("env overrides not applied: %+v %+v", cfg.Payflow, cfg.Redis)
		}
	})

	t.Run("missing dotenv file is fine", func(t *testing.T) {
		if err := loadDotEnv(t.TempDir() + "/absent.env"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}
