package scanner

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/agentskill/skilllite/pkg/skill"
)

// Scanner runs the rule tables for Python/JavaScript/shell source.
type Scanner struct{}

// New constructs a Scanner. It carries no state: rule tables are static.
func New() *Scanner {
	return &Scanner{}
}

func rulesFor(lang skill.Language) []rule {
	switch lang {
	case skill.LangPython:
		return pythonRules
	case skill.LangNode:
		return javascriptRules
	case skill.LangBash:
		return shellRules
	default:
		return nil
	}
}

// ScanFile reads path and scans it, inferring language from its extension
// when lang is skill.LangUnknown.
func (s *Scanner) ScanFile(path string, lang skill.Language, sandboxLevel string) *Result {
	src, err := os.ReadFile(path)
	if err != nil {
		return s.scanException(sandboxLevel, fmt.Sprintf("reading %s: %v", path, err))
	}
	if lang == skill.LangUnknown {
		lang = inferLangFromExt(path)
	}
	return s.Scan(string(src), lang, sandboxLevel)
}

func inferLangFromExt(path string) skill.Language {
	switch {
	case strings.HasSuffix(path, ".py"):
		return skill.LangPython
	case strings.HasSuffix(path, ".js"), strings.HasSuffix(path, ".ts"):
		return skill.LangNode
	case strings.HasSuffix(path, ".sh"):
		return skill.LangBash
	default:
		return skill.LangUnknown
	}
}

// Scan runs the rule table for lang against src. It never executes src.
// On internal failure it fails secure: a synthetic High "scan-exception"
// finding is returned instead of propagating the error, so callers
// conservatively refuse execution (§4.4 "Scanner fail-secure").
func (s *Scanner) Scan(src string, lang skill.Language, sandboxLevel string) (result *Result) {
	defer func() {
		// A rule-table bug (e.g. a nil pattern) must not crash the
		// caller's process: fail secure with a synthetic finding instead.
		if r := recover(); r != nil {
			result = s.scanException(sandboxLevel, fmt.Sprintf("scanner panic: %v", r))
		}
	}()

	rules := rulesFor(lang)
	lines := strings.Split(src, "\n")

	var findings []Finding
	for _, r := range rules {
		for i, line := range lines {
			if r.matches(line) {
				findings = append(findings, Finding{
					Severity:    r.severity,
					RuleID:      r.id,
					IssueType:   r.issueType,
					Description: r.desc,
					LineNumber:  i + 1,
					CodeSnippet: strings.TrimSpace(line),
				})
			}
		}
	}

	// Order-stable by (line_number, rule_id) per §8 Scanner determinism.
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].LineNumber != findings[j].LineNumber {
			return findings[i].LineNumber < findings[j].LineNumber
		}
		return findings[i].RuleID < findings[j].RuleID
	})

	return &Result{
		ScanID:       newScanID(),
		CodeHash:     truncatedHash(src),
		Findings:     findings,
		SandboxLevel: sandboxLevel,
		Timestamp:    time.Now().UTC(),
	}
}

func (s *Scanner) scanException(sandboxLevel, msg string) *Result {
	return &Result{
		ScanID:       newScanID(),
		CodeHash:     truncatedHash(msg),
		SandboxLevel: sandboxLevel,
		Timestamp:    time.Now().UTC(),
		Findings: []Finding{
			{
				Severity:    High,
				RuleID:      "scan-exception",
				IssueType:   "Scan Error",
				Description: msg,
			},
		},
	}
}
