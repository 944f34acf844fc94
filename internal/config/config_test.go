package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":4000" {
		t.Fatalf("unexpected default addr %q", cfg.Addr)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("redis should default to disabled, got %q", cfg.RedisAddr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected default log level %q", cfg.LogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "addr: \":9999\"\nredis_addr: \"localhost:6379\"\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Addr != ":9999" || cfg.RedisAddr != "localhost:6379" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9999\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("COLLAB_ADDR", ":7777")
	t.Setenv("COLLAB_JWT_SECRET", "env-secret")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7777" {
		t.Fatalf("env var should win over file, got %q", cfg.Addr)
	}
	if cfg.JWTSecret != "env-secret" {
		t.Fatalf("expected env jwt secret, got %q", cfg.JWTSecret)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t-broken"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("load written default: %v", err)
	}
	if cfg.Addr != Default().Addr {
		t.Fatalf("round-tripped default mismatch: %#v", cfg)
	}
}
