package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: localhost:6379
  ttl: 30m
scoring:
  model: usa
log:
  level: debug
  format: pretty
janitor:
  interval: 30s
  idle: 2h
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Scoring.Model != "usa" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "pretty" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
	if got := TTLDuration(cfg.Janitor.Idle, time.Hour); got != 2*time.Hour {
		t.Fatalf("unexpected idle %v", got)
	}
	if cfg.Postgres.URL != "" {
		t.Fatalf("expected postgres disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"bogus", time.Minute},
		{"90s", 90 * time.Second},
	}
	for _, tc := range cases {
		if got := TTLDuration(tc.raw, time.Minute); got != tc.want {
			t.Fatalf("TTLDuration(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
