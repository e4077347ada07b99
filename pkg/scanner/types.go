// Package scanner implements the rule-driven static security scanner (C4):
// it classifies dangerous constructs in Python, JavaScript, and shell
// source by severity, without ever executing the code.
package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a SecurityFinding.
type Severity string

const (
	Critical Severity = "Critical"
	High     Severity = "High"
	Medium   Severity = "Medium"
	Low      Severity = "Low"
)

// Finding is one rule match in scanned source (§3 SecurityFinding).
type Finding struct {
	Severity    Severity `json:"severity"`
	RuleID      string   `json:"rule_id"`
	IssueType   string   `json:"issue_type"`
	Description string   `json:"description"`
	LineNumber  int      `json:"line_number"`
	CodeSnippet string   `json:"code_snippet"`
}

// hardBlockRuleIDs flips has_hard_blocked regardless of issue_type (§4.4).
var hardBlockRuleIDs = map[string]bool{
	"py-subprocess":     true,
	"py-os-system":      true,
	"js-child-process":  true,
}

const hardBlockIssueType = "Process Execution"

// Result is a completed scan (§3 SecurityScanResult).
type Result struct {
	ScanID       string    `json:"scan_id"`
	CodeHash     string    `json:"code_hash"`
	Findings     []Finding `json:"findings"`
	SandboxLevel string    `json:"sandbox_level"`
	Timestamp    time.Time `json:"timestamp"`
}

// Counts returns the number of findings per severity.
func (r *Result) Counts() map[Severity]int {
	counts := map[Severity]int{Critical: 0, High: 0, Medium: 0, Low: 0}
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// HighSeverityCount is Critical+High findings combined (§4.4 severity
// aggregation: "Critical and High count as high").
func (r *Result) HighSeverityCount() int {
	c := r.Counts()
	return c[Critical] + c[High]
}

// HasHardBlocked is only meaningful when SandboxLevel == "3".
func (r *Result) HasHardBlocked() bool {
	for _, f := range r.Findings {
		if f.IssueType == hardBlockIssueType || hardBlockRuleIDs[f.RuleID] {
			return true
		}
	}
	return false
}

// RequiresConfirmation implements the derived field from §3:
// requires_confirmation = high_count > 0 ∧ ¬has_hard_blocked.
func (r *Result) RequiresConfirmation() bool {
	return r.HighSeverityCount() > 0 && !r.HasHardBlocked()
}

func newScanID() string {
	return uuid.NewString()
}

// truncatedHash returns the first 16 hex chars of SHA-256(src), matching
// the "truncated SHA-256" code_hash format used for confirmation-hash
// binding (§4.5.1).
func truncatedHash(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])[:16]
}
