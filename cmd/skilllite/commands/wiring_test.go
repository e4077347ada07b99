package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentskill/skilllite/pkg/config"
)

func TestBuildDispatcher_WiresADispatcherAndUsableCleanup(t *testing.T) {
	cacheDir := t.TempDir()
	cfg := config.Default()
	cfg.CacheDir = cacheDir
	cfg.AuditDB = filepath.Join(cacheDir, "audit.db")

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	disp, gotCacheDir, cleanup, err := buildDispatcher(cfg, log)
	if err != nil {
		t.Fatalf("buildDispatcher: %v", err)
	}
	defer cleanup()

	if disp == nil {
		t.Fatal("buildDispatcher returned a nil dispatcher")
	}
	if gotCacheDir != cacheDir {
		t.Errorf("cacheDir = %q, want %q", gotCacheDir, cacheDir)
	}
	if _, err := os.Stat(cfg.AuditDB); err != nil {
		t.Errorf("want the audit db created at %q: %v", cfg.AuditDB, err)
	}
}

func TestBuildDispatcher_DefaultsCacheDirWhenConfigOmitsIt(t *testing.T) {
	t.Setenv("AGENTSKILL_CACHE_DIR", t.TempDir())
	cfg := config.Default()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	disp, gotCacheDir, cleanup, err := buildDispatcher(cfg, log)
	if err != nil {
		t.Fatalf("buildDispatcher: %v", err)
	}
	defer cleanup()

	if disp == nil || gotCacheDir == "" {
		t.Fatal("want a dispatcher and a resolved cache dir")
	}
}
