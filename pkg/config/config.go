// Package config loads skilllite's own operator-facing configuration:
// log format/level, cache directory overrides, and daemon pool size.
// This is distinct from a skill's SKILL.md manifest (pkg/skill) or its
// .skilllite.lock (pkg/resolver) — it configures the binary itself.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root of skilllite.yaml: logging, cache directory, audit
// database path, and daemon pool size.
type Config struct {
	Logging struct {
		Level  string `yaml:"level"`  // debug | info | warn | error
		Format string `yaml:"format"` // json | text
	} `yaml:"logging"`

	CacheDir string `yaml:"cache_dir"`
	AuditDB  string `yaml:"audit_db"`

	Daemon struct {
		PoolSize int `yaml:"pool_size"`
	} `yaml:"daemon"`
}

// Default returns a Config with the same defaults DefaultContext()/
// CacheDir() fall back to when nothing is configured.
func Default() *Config {
	cfg := &Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Daemon.PoolSize = 10
	return cfg
}

// Load reads path as YAML into a Config seeded with Default(). A missing
// file is not an error — callers proceed with defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// FindConfigFile searches standard locations for a skilllite config file.
func FindConfigFile() string {
	for _, candidate := range []string{"skilllite.yaml", "skilllite.yml", "configs/skilllite.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadEnvFiles loads .env/.env.local into the process environment without
// overwriting variables already set, for development convenience
// (SKILLBOX_* overrides still take precedence when already exported).
func LoadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}
