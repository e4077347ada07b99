// Package environment materializes content-addressed, per-package-set
// language environments (Python venvs, Node node_modules directories),
// shared across every skill that declares the same dependency set.
package environment

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/agentskill/skilllite/pkg/skill"
)

// cachePrefix maps a language to the prefix used in its cache_key, per §3
// EnvironmentKey: python -> "py", node -> "node".
func cachePrefix(lang skill.Language) string {
	switch lang {
	case skill.LangPython:
		return "py"
	case skill.LangNode:
		return "node"
	default:
		return string(lang)
	}
}

// CacheKey computes cache_key = "<prefix>-<hex16>", where hex16 is the
// first 16 hex characters of SHA-256(sorted packages joined by '\n').
// An empty package list yields "<prefix>-none".
func CacheKey(lang skill.Language, packages []string) string {
	prefix := cachePrefix(lang)
	if len(packages) == 0 {
		return prefix + "-none"
	}
	sorted := make([]string, len(packages))
	copy(sorted, packages)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	digest := hex.EncodeToString(sum[:])
	return prefix + "-" + digest[:16]
}

// CacheDir returns the OS-appropriate environment cache base directory,
// honouring AGENTSKILL_CACHE_DIR overrides (§6 Environment variables).
func CacheDir() (string, error) {
	if override := os.Getenv("AGENTSKILL_CACHE_DIR"); override != "" {
		return filepath.Join(override, "agentskill", "envs"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "agentskill", "envs"), nil
	case "linux":
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "agentskill", "envs"), nil
		}
		return filepath.Join(home, ".cache", "agentskill", "envs"), nil
	default:
		return filepath.Join(home, ".cache", "agentskill", "envs"), nil
	}
}

const sentinelFile = ".agentskill_complete"
const playwrightMarker = ".playwright_chromium_done"

func hasPlaywright(packages []string) bool {
	for _, p := range packages {
		if strings.EqualFold(p, "playwright") {
			return true
		}
	}
	return false
}
