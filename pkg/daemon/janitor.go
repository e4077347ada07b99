package daemon

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agentskill/skilllite/pkg/scanner"
)

// staleEnvAge marks a partial environment directory (no completion
// sentinel) as abandoned once it's older than this, safe to remove even
// outside the owning Builder since a genuinely in-progress build holds no
// lock the janitor could violate — singleflight only collapses builders
// within one process, and a stale directory implies that process is gone.
const staleEnvAge = 2 * time.Hour

// Janitor periodically sweeps the scan-result cache and any stale partial
// environment directories, belt-and-suspenders to the lazy TTL eviction
// the scan cache already performs on every Lookup (§4.3, §11 DOMAIN
// STACK robfig/cron wiring).
type Janitor struct {
	cache    *scanner.Cache
	cacheDir string
	log      *slog.Logger
	cronJob  *cron.Cron
}

// NewJanitor constructs a Janitor. cacheDir may be empty to skip the
// partial-environment sweep.
func NewJanitor(cache *scanner.Cache, cacheDir string, log *slog.Logger) *Janitor {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &Janitor{cache: cache, cacheDir: cacheDir, log: log.With("component", "janitor")}
}

// Start schedules the sweep on spec (standard 5-field cron, e.g.
// "*/5 * * * *") and returns once the schedule is registered; the sweep
// itself runs on cron's own goroutine until Stop is called.
func (j *Janitor) Start(spec string) error {
	j.cronJob = cron.New()
	_, err := j.cronJob.AddFunc(spec, j.sweep)
	if err != nil {
		return err
	}
	j.cronJob.Start()
	return nil
}

// Stop halts the schedule, waiting for any in-flight sweep to finish.
func (j *Janitor) Stop() {
	if j.cronJob != nil {
		ctx := j.cronJob.Stop()
		<-ctx.Done()
	}
}

func (j *Janitor) sweep() {
	removed := j.cache.Sweep()
	staleEnvs := j.sweepPartialEnvs()
	if removed > 0 || staleEnvs > 0 {
		j.log.Info("janitor sweep", "expired_scans", removed, "stale_envs", staleEnvs)
	}
}

// sweepPartialEnvs removes cache-dir entries with no completion sentinel
// that are older than staleEnvAge: a build that crashed or was killed
// mid-install leaves exactly this shape behind.
func (j *Janitor) sweepPartialEnvs() int {
	if j.cacheDir == "" {
		return 0
	}
	entries, err := os.ReadDir(j.cacheDir)
	if err != nil {
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-staleEnvAge)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(j.cacheDir, e.Name())
		if hasCompletionSentinel(dir) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err == nil {
			removed++
		}
	}
	return removed
}

func hasCompletionSentinel(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".agentskill_complete"))
	return err == nil
}
