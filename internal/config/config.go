package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envDSN    = "ROADWATCH_PG_DSN"
	envListen = "ROADWATCH_LISTEN_ADDR"
)

// Duration accepts YAML values like "15m" or "1h30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds runtime settings for the API server. Values come from an
// optional YAML file; the DSN and listen address may be overridden via
// environment variables so deployments can keep credentials out of the file.
type Config struct {
	ListenAddr  string   `yaml:"listen_addr"`
	DatabaseDSN string   `yaml:"database_dsn"`
	TokenTTL    Duration `yaml:"token_ttl"`

	RateLimit struct {
		Burst     int `yaml:"burst"`
		PerSecond int `yaml:"per_second"`
	} `yaml:"rate_limit"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.ListenAddr = ":8080"
	c.TokenTTL = Duration(15 * time.Minute)
	c.RateLimit.Burst = 20
	c.RateLimit.PerSecond = 10
	return c
}

// Load reads the YAML file at path (if non-empty) on top of defaults and then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(envDSN)); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(envListen)); v != "" {
		cfg.ListenAddr = v
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = Duration(15 * time.Minute)
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 20
	}
	if cfg.RateLimit.PerSecond <= 0 {
		cfg.RateLimit.PerSecond = 10
	}
	return cfg, nil
}
