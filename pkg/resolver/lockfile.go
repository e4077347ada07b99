package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const lockfileName = ".skilllite.lock"

// ResolverTag identifies which resolution strategy produced a package list.
type ResolverTag string

const (
	ResolverLock      ResolverTag = "lock"
	ResolverLLM       ResolverTag = "llm"
	ResolverWhitelist ResolverTag = "whitelist"
	ResolverNone      ResolverTag = "none"
)

// Lockfile mirrors .skilllite.lock: a caller-written, core-read record of a
// previously resolved package set.
type Lockfile struct {
	CompatibilityHash string      `json:"compatibility_hash"`
	Language          string      `json:"language"`
	ResolvedPackages  []string    `json:"resolved_packages"`
	ResolvedAt        time.Time   `json:"resolved_at"`
	Resolver          ResolverTag `json:"resolver"`
}

// HashCompatibility computes the SHA-256 hex digest of a compatibility
// string, used both to write and to validate a lockfile.
func HashCompatibility(compatibility string) string {
	sum := sha256.Sum256([]byte(compatibility))
	return hex.EncodeToString(sum[:])
}

// LoadLockfile reads dir/.skilllite.lock. A missing file is not an error —
// it simply means no lockfile exists yet.
func LoadLockfile(dir string) (*Lockfile, error) {
	path := filepath.Join(dir, lockfileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var lf Lockfile
	if err := json.Unmarshal(raw, &lf); err != nil {
		return nil, err
	}
	return &lf, nil
}

// Valid reports whether the lockfile is honoured for the given
// compatibility string — its compatibility_hash must match exactly,
// otherwise it is stale and must be replaced (§3 Lockfile invariant).
func (lf *Lockfile) Valid(compatibility string) bool {
	if lf == nil {
		return false
	}
	return lf.CompatibilityHash == HashCompatibility(compatibility)
}

// sortedUnique returns a sorted slice with duplicates removed, matching the
// lockfile's `resolved_packages: sorted unique strings` invariant.
func sortedUnique(pkgs []string) []string {
	seen := make(map[string]struct{}, len(pkgs))
	out := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
