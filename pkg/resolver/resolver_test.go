package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentskill/skilllite/pkg/skill"
	"github.com/agentskill/skilllite/pkg/skillerr"
)

func TestResolve_WhitelistFallbackWhenNoLockfileOrLLM(t *testing.T) {
	dir := t.TempDir()
	result, err := Resolve(context.Background(), Options{
		SkillDir:      dir,
		Compatibility: "this skill needs pandas and requests",
		Language:      skill.LangPython,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Resolver != ResolverWhitelist {
		t.Errorf("Resolver = %q, want %q", result.Resolver, ResolverWhitelist)
	}
	want := map[string]bool{"pandas": true, "requests": true}
	if len(result.Packages) != len(want) {
		t.Fatalf("Packages = %+v, want %v", result.Packages, want)
	}
	for _, p := range result.Packages {
		if !want[p] {
			t.Errorf("unexpected package %q", p)
		}
	}
}

func TestResolve_NoMatchYieldsResolverNone(t *testing.T) {
	dir := t.TempDir()
	result, err := Resolve(context.Background(), Options{
		SkillDir:      dir,
		Compatibility: "does not reference any known package",
		Language:      skill.LangPython,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Resolver != ResolverNone {
		t.Errorf("Resolver = %q, want %q", result.Resolver, ResolverNone)
	}
	if len(result.Packages) != 0 {
		t.Errorf("Packages = %+v, want empty", result.Packages)
	}
}

func TestResolve_ValidLockfileTakesPriorityOverWhitelist(t *testing.T) {
	dir := t.TempDir()
	compat := "this skill needs pandas"
	lf := `{
		"compatibility_hash": "` + HashCompatibility(compat) + `",
		"language": "python",
		"resolved_packages": ["numpy", "requests"],
		"resolved_at": "2026-01-01T00:00:00Z",
		"resolver": "lock"
	}`
	if err := os.WriteFile(filepath.Join(dir, lockfileName), []byte(lf), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Resolve(context.Background(), Options{
		SkillDir:      dir,
		Compatibility: compat,
		Language:      skill.LangPython,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Resolver != ResolverLock {
		t.Errorf("Resolver = %q, want %q (lockfile must win over the whitelist match on 'pandas')", result.Resolver, ResolverLock)
	}
	want := []string{"numpy", "requests"}
	if len(result.Packages) != len(want) || result.Packages[0] != want[0] || result.Packages[1] != want[1] {
		t.Errorf("Packages = %+v, want %+v", result.Packages, want)
	}
}

func TestResolve_LockfileWithUnknownPackageIsRejected(t *testing.T) {
	dir := t.TempDir()
	compat := "anything"
	lf := `{
		"compatibility_hash": "` + HashCompatibility(compat) + `",
		"language": "python",
		"resolved_packages": ["not-a-real-package"],
		"resolved_at": "2026-01-01T00:00:00Z",
		"resolver": "lock"
	}`
	if err := os.WriteFile(filepath.Join(dir, lockfileName), []byte(lf), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(context.Background(), Options{
		SkillDir:      dir,
		Compatibility: compat,
		Language:      skill.LangPython,
	})
	if skillerr.KindOf(err) != skillerr.UnknownPackage {
		t.Fatalf("want UnknownPackage, got %v", err)
	}
}

func TestResolve_StaleLockfileFallsThroughToWhitelist(t *testing.T) {
	dir := t.TempDir()
	lf := `{
		"compatibility_hash": "stale-hash-that-will-never-match",
		"language": "python",
		"resolved_packages": ["numpy"],
		"resolved_at": "2026-01-01T00:00:00Z",
		"resolver": "lock"
	}`
	if err := os.WriteFile(filepath.Join(dir, lockfileName), []byte(lf), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Resolve(context.Background(), Options{
		SkillDir:      dir,
		Compatibility: "needs requests",
		Language:      skill.LangPython,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Resolver != ResolverWhitelist {
		t.Errorf("Resolver = %q, want %q (a stale lockfile must be ignored)", result.Resolver, ResolverWhitelist)
	}
}
