package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentskill/skilllite/pkg/scanner"
	"github.com/agentskill/skilllite/pkg/skill"
)

func TestScanReportView_ReflectsResultCounts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.py")
	if err := os.WriteFile(path, []byte("import subprocess\nsubprocess.run(['ls'])\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := scanner.New()
	result := s.ScanFile(path, skill.LangPython, "3")
	view := scanReportView(result)

	if view["scan_id"] != result.ScanID {
		t.Errorf("scan_id mismatch: %v", view["scan_id"])
	}
	if view["has_hard_blocked"] != true {
		t.Errorf("want has_hard_blocked=true for a subprocess call, got %v", view["has_hard_blocked"])
	}
	if _, ok := view["counts"].(map[scanner.Severity]int); !ok {
		t.Errorf("counts has unexpected type: %T", view["counts"])
	}
	if view["high_severity_count"].(int) < 1 {
		t.Errorf("want at least one high-severity finding, got %v", view["high_severity_count"])
	}
}

func TestScanReportView_NoFindingsOnBenignSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.py")
	if err := os.WriteFile(path, []byte("print('hello')\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := scanner.New()
	result := s.ScanFile(path, skill.LangPython, "3")
	view := scanReportView(result)

	if view["has_hard_blocked"] != false {
		t.Errorf("want no hard block for benign source, got %v", view["has_hard_blocked"])
	}
	if view["requires_confirmation"] != false {
		t.Errorf("want no confirmation required for benign source, got %v", view["requires_confirmation"])
	}
}
