package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\ngateway_url: http://gw:1234\nidle_timeout_sec: 90\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.GatewayURL != "http://gw:1234" || cfg.IdleTimeoutSec != 90 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","gateway_url":"http://gw","session_limit_sec":600,"cors_origins":["http://localhost:5173"]}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.GatewayURL != "http://gw" || cfg.SessionLimitSec != 600 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected origins: %+v", cfg.CORSOrigins)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\ngateway_url=\"http://gw:9\"\nkiosk_idle_timeout_sec=300\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.GatewayURL != "http://gw:9" || cfg.KioskIdleTimeoutSec != 300 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	var cfg Config
	cfg.Normalize()
	if cfg.Addr != DefaultAddr || cfg.GatewayURL != DefaultGatewayURL {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.IdleTimeoutSec != int(DefaultIdleTimeout/time.Second) {
		t.Fatalf("idle default: %d", cfg.IdleTimeoutSec)
	}
	if cfg.KioskIdleTimeoutSec != int(DefaultKioskIdleTimeout/time.Second) {
		t.Fatalf("kiosk idle default: %d", cfg.KioskIdleTimeoutSec)
	}
	if cfg.SessionLimitSec != 0 {
		t.Fatalf("session limit should stay disabled by default, got %d", cfg.SessionLimitSec)
	}
}

func TestFromEnvFillsUnsetOnly(t *testing.T) {
	t.Setenv("CONSOLED_ADDR", ":1111")
	t.Setenv("CONSOLED_GATEWAY_URL", "http://env-gw")
	cfg := Config{Addr: ":2222"}
	cfg.FromEnv()
	if cfg.Addr != ":2222" {
		t.Fatalf("env must not override explicit addr, got %s", cfg.Addr)
	}
	if cfg.GatewayURL != "http://env-gw" {
		t.Fatalf("expected env gateway url, got %s", cfg.GatewayURL)
	}
}
