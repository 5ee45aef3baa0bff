package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileOverlaysValues(t *testing.T) {
	path := writeConfig(t, `
admin_token: tok
deployment:
  session_token: sess
  timeout: 2s
metrics:
  enabled: false
  otlp_insecure: false
  otlp_endpoint: collector:4318
log:
  level: debug
`)
	cfg, err := LoadFile(path, Defaults())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AdminToken != "tok" || cfg.Deployment.SessionToken != "sess" {
		t.Fatalf("unexpected tokens %+v", cfg)
	}
	if cfg.Deployment.Timeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.Deployment.Timeout)
	}
	if cfg.Metrics.Enabled || cfg.Metrics.OtlpInsecure {
		t.Fatalf("expected metrics booleans from file, got %+v", cfg.Metrics)
	}
	if cfg.Metrics.OtlpEndpoint != "collector:4318" {
		t.Fatalf("expected otlp endpoint from file, got %s", cfg.Metrics.OtlpEndpoint)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %s", cfg.Log.Level)
	}
	if cfg.Port != defaultPort {
		t.Fatalf("expected unset keys to keep base, got port %s", cfg.Port)
	}
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad yaml":          "port: [",
		"bad interval":      "poll_interval: soon",
		"negative interval": "poll_interval: -1s",
		"bad timeout":       "deployment:\n  timeout: nope",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, body), Defaults()); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}
