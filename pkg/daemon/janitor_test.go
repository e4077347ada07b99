package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentskill/skilllite/pkg/scanner"
)

func TestSweepPartialEnvs_RemovesOnlyStaleSentinellessDirs(t *testing.T) {
	cacheDir := t.TempDir()

	stale := filepath.Join(cacheDir, "py-stale")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	oldTime := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(stale, oldTime, oldTime); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(cacheDir, "py-fresh")
	if err := os.MkdirAll(fresh, 0o755); err != nil {
		t.Fatal(err)
	}

	complete := filepath.Join(cacheDir, "py-complete")
	if err := os.MkdirAll(complete, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(complete, ".agentskill_complete"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	oldCompleteTime := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(complete, oldCompleteTime, oldCompleteTime); err != nil {
		t.Fatal(err)
	}

	j := NewJanitor(scanner.NewCache(), cacheDir, nil)
	removed := j.sweepPartialEnvs()

	if removed != 1 {
		t.Fatalf("sweepPartialEnvs removed %d dirs, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("want the stale, sentinel-less dir removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("want the fresh, sentinel-less dir kept")
	}
	if _, err := os.Stat(complete); err != nil {
		t.Error("want the completed (sentinel-present) dir kept regardless of age")
	}
}

func TestSweepPartialEnvs_EmptyCacheDirIsANoop(t *testing.T) {
	j := NewJanitor(scanner.NewCache(), "", nil)
	if removed := j.sweepPartialEnvs(); removed != 0 {
		t.Errorf("want 0 removed when cacheDir is empty, got %d", removed)
	}
}

func TestJanitor_SweepRunsOnEmptyScanCache(t *testing.T) {
	cache := scanner.NewCache()
	j := NewJanitor(cache, "", nil)
	// sweep() must run without panicking against an empty cache.
	j.sweep()
}
