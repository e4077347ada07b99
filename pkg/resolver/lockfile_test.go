package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashCompatibility_Deterministic(t *testing.T) {
	a := HashCompatibility("requires pandas and numpy")
	b := HashCompatibility("requires pandas and numpy")
	if a != b {
		t.Fatalf("hash not deterministic: %s vs %s", a, b)
	}
	if HashCompatibility("requires pandas") == a {
		t.Fatal("different inputs must not collide for this simple case")
	}
}

func TestLoadLockfile_MissingFileIsNotAnError(t *testing.T) {
	lf, err := LoadLockfile(t.TempDir())
	if err != nil {
		t.Fatalf("missing lockfile must not be an error, got %v", err)
	}
	if lf != nil {
		t.Fatalf("want nil lockfile when none exists, got %+v", lf)
	}
}

func TestLockfile_ValidChecksCompatibilityHash(t *testing.T) {
	compat := "requires requests"
	lf := &Lockfile{CompatibilityHash: HashCompatibility(compat)}

	if !lf.Valid(compat) {
		t.Error("want Valid() = true when compatibility_hash matches")
	}
	if lf.Valid("requires requests and numpy") {
		t.Error("want Valid() = false when the compatibility string changed")
	}
}

func TestLockfile_ValidOnNilReceiver(t *testing.T) {
	var lf *Lockfile
	if lf.Valid("anything") {
		t.Error("a nil *Lockfile must never be Valid")
	}
}

func TestLoadLockfile_ReadsWrittenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, lockfileName)
	body := `{
		"compatibility_hash": "abc123",
		"language": "python",
		"resolved_packages": ["numpy", "requests"],
		"resolved_at": "2026-01-01T00:00:00Z",
		"resolver": "lock"
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	lf, err := LoadLockfile(dir)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if lf == nil {
		t.Fatal("want a non-nil lockfile")
	}
	if lf.Resolver != ResolverLock {
		t.Errorf("Resolver = %q, want %q", lf.Resolver, ResolverLock)
	}
	if len(lf.ResolvedPackages) != 2 {
		t.Errorf("ResolvedPackages = %+v, want 2 entries", lf.ResolvedPackages)
	}
}

func TestSortedUnique(t *testing.T) {
	got := sortedUnique([]string{"numpy", "requests", "numpy", "axios"})
	want := []string{"axios", "numpy", "requests"}
	if len(got) != len(want) {
		t.Fatalf("sortedUnique = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedUnique = %+v, want %+v", got, want)
		}
	}
}
