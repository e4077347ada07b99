package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want level=info format=json", cfg.Logging)
	}
	if cfg.Daemon.PoolSize != 10 {
		t.Errorf("Daemon.PoolSize = %d, want 10", cfg.Daemon.PoolSize)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("want defaults preserved for empty path, got %+v", cfg)
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("a missing config file must not be an error, got %v", err)
	}
	if cfg.Daemon.PoolSize != 10 {
		t.Errorf("want defaults when the file does not exist, got %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skilllite.yaml")
	body := `
logging:
  level: debug
  format: text
cache_dir: /tmp/custom-cache
daemon:
  pool_size: 4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.CacheDir != "/tmp/custom-cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.Daemon.PoolSize != 4 {
		t.Errorf("Daemon.PoolSize = %d, want 4", cfg.Daemon.PoolSize)
	}
}

func TestFindConfigFile_PrefersFirstExistingCandidate(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != "" {
		t.Errorf("FindConfigFile() = %q, want empty when no candidate exists", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "skilllite.yaml"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != "skilllite.yaml" {
		t.Errorf("FindConfigFile() = %q, want skilllite.yaml", got)
	}
}
