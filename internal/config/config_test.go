package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("ROADWATCH_PG_DSN", "")
	t.Setenv("ROADWATCH_LISTEN_ADDR", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.TokenTTL.Std() != 15*time.Minute {
		t.Fatalf("unexpected token ttl %v", cfg.TokenTTL)
	}
	if cfg.RateLimit.Burst != 20 || cfg.RateLimit.PerSecond != 10 {
		t.Fatalf("unexpected rate limits %+v", cfg.RateLimit)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
listen_addr: ":9999"
database_dsn: "postgres://file-dsn"
token_ttl: 30m
rate_limit:
  burst: 5
  per_second: 2
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ROADWATCH_PG_DSN", "postgres://env-dsn")
	t.Setenv("ROADWATCH_LISTEN_ADDR", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	// environment wins over the file for credentials
	if cfg.DatabaseDSN != "postgres://env-dsn" {
		t.Fatalf("unexpected dsn %q", cfg.DatabaseDSN)
	}
	if cfg.TokenTTL.Std() != 30*time.Minute {
		t.Fatalf("unexpected token ttl %v", cfg.TokenTTL)
	}
	if cfg.RateLimit.Burst != 5 || cfg.RateLimit.PerSecond != 2 {
		t.Fatalf("unexpected rate limits %+v", cfg.RateLimit)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
