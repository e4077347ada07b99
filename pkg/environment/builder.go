package environment

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/agentskill/skilllite/pkg/skill"
	"github.com/agentskill/skilllite/pkg/skillerr"
)

// Builder materializes language environments at CacheDir()/<cache_key>,
// exactly once per package set, shared across skills (§4.3).
type Builder struct {
	cacheDir string
	group    singleflight.Group // collapses concurrent builders for one key
	audit    *AuditLog          // optional; nil disables audit persistence
}

// NewBuilder constructs a Builder rooted at the given cache directory. If
// cacheDir is empty, CacheDir() is used.
func NewBuilder(cacheDir string, audit *AuditLog) (*Builder, error) {
	if cacheDir == "" {
		var err error
		cacheDir, err = CacheDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %q: %w", cacheDir, err)
	}
	return &Builder{cacheDir: cacheDir, audit: audit}, nil
}

// Ensure materialises (or reuses) the environment for lang/packages,
// returning its path. It is crash-safe and idempotent: a partial directory
// from a previous failed build is purged and rebuilt. Concurrent callers
// for the same cache_key converge to a single build via singleflight,
// satisfying the §4.3 concurrency requirement without relying on a
// file-lock or atomic-rename scheme.
func (b *Builder) Ensure(ctx context.Context, lang skill.Language, packages []string) (string, error) {
	key := CacheKey(lang, packages)
	envPath := filepath.Join(b.cacheDir, key)

	if sentinelPresent(envPath) {
		if err := b.ensurePlaywright(ctx, envPath, packages); err != nil {
			return "", err
		}
		return envPath, nil
	}

	v, err, _ := b.group.Do(key, func() (interface{}, error) {
		return envPath, b.build(ctx, envPath, lang, packages)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func sentinelPresent(envPath string) bool {
	if _, err := os.Stat(envPath); err != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(envPath, sentinelFile))
	return err == nil
}

func (b *Builder) build(ctx context.Context, envPath string, lang skill.Language, packages []string) error {
	start := time.Now()

	if sentinelPresent(envPath) {
		// Another process (outside this singleflight group, e.g. a
		// sibling daemon process) finished first while we waited.
		return b.ensurePlaywright(ctx, envPath, packages)
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := os.RemoveAll(envPath); err != nil {
			return skillerr.Wrap(skillerr.EnvironmentBuildFailed, "purge partial env", err)
		}
	}

	var err error
	switch lang {
	case skill.LangPython:
		err = buildPythonEnv(ctx, envPath, packages)
	case skill.LangNode:
		err = buildNodeEnv(ctx, envPath, packages)
	default:
		err = skillerr.New(skillerr.UnsupportedLanguage, string(lang))
	}
	if err != nil {
		b.recordAudit(lang, packages, false, time.Since(start))
		return err
	}

	if err := os.WriteFile(filepath.Join(envPath, sentinelFile), nil, 0o644); err != nil {
		return skillerr.Wrap(skillerr.EnvironmentBuildFailed, "write sentinel", err)
	}

	if err := b.ensurePlaywright(ctx, envPath, packages); err != nil {
		return err
	}

	b.recordAudit(lang, packages, true, time.Since(start))
	return nil
}

func (b *Builder) recordAudit(lang skill.Language, packages []string, success bool, elapsed time.Duration) {
	if b.audit == nil {
		return
	}
	b.audit.RecordBuild(string(lang), CacheKey(lang, packages), success, elapsed)
}

func buildPythonEnv(ctx context.Context, envPath string, packages []string) error {
	if out, err := exec.CommandContext(ctx, "python3", "-m", "venv", envPath).CombinedOutput(); err != nil {
		return skillerr.Wrap(skillerr.EnvironmentBuildFailed, "create venv: "+string(out), err)
	}
	if len(packages) == 0 {
		return nil
	}
	pip := filepath.Join(envPath, "bin", "pip")
	args := append([]string{"install", "--quiet", "--disable-pip-version-check"}, packages...)
	if out, err := exec.CommandContext(ctx, pip, args...).CombinedOutput(); err != nil {
		return skillerr.Wrap(skillerr.EnvironmentBuildFailed, "pip install: "+string(out), err)
	}
	return nil
}

func buildNodeEnv(ctx context.Context, envPath string, packages []string) error {
	if err := os.MkdirAll(envPath, 0o755); err != nil {
		return skillerr.Wrap(skillerr.EnvironmentBuildFailed, "create env dir", err)
	}
	if len(packages) == 0 {
		return nil
	}
	args := append([]string{"install", "--silent"}, packages...)
	cmd := exec.CommandContext(ctx, "npm", args...)
	cmd.Dir = envPath
	if out, err := cmd.CombinedOutput(); err != nil {
		return skillerr.Wrap(skillerr.EnvironmentBuildFailed, "npm install: "+string(out), err)
	}
	return nil
}

// ensurePlaywright runs the post-install Chromium fetch hook (§4.3 Post-
// install hook; supplemented from original_source's
// isolation/builder.py:ensure_playwright_chromium) when the package set
// includes playwright and the per-env marker is absent.
func (b *Builder) ensurePlaywright(ctx context.Context, envPath string, packages []string) error {
	if !hasPlaywright(packages) {
		return nil
	}
	marker := filepath.Join(envPath, playwrightMarker)
	if _, err := os.Stat(marker); err == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	python := filepath.Join(envPath, "bin", "python")
	out, err := exec.CommandContext(ctx, python, "-m", "playwright", "install", "chromium").CombinedOutput()
	if err != nil {
		return skillerr.Wrap(skillerr.EnvironmentBuildFailed,
			"playwright install chromium failed: "+string(out)+" (you can run manually later: playwright install chromium)", err)
	}
	return os.WriteFile(marker, nil, 0o644)
}
