package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentskill/skilllite/pkg/scanner"
	"github.com/agentskill/skilllite/pkg/skill"
)

func newSecurityScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security-scan <path>",
		Short: "Statically scan a file for dangerous constructs without executing it",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecurityScan,
	}
	cmd.Flags().Bool("json", false, "emit the full SecurityScanResult as JSON (mandatory for machine consumers)")
	cmd.Flags().String("sandbox-level", "3", "sandbox level the scan is evaluated for; only level 3 computes hard-block")
	return cmd
}

func runSecurityScan(cmd *cobra.Command, args []string) error {
	s := scanner.New()
	level, _ := cmd.Flags().GetString("sandbox-level")
	result := s.ScanFile(args[0], skill.LangUnknown, level)

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(scanReportView(result)); err != nil {
			return err
		}
	} else {
		printScanReport(result)
	}

	if result.HasHardBlocked() {
		os.Exit(4)
	}
	if result.RequiresConfirmation() {
		os.Exit(2)
	}
	return nil
}

// scanReportView renders a scanner.Result into the §3 SecurityScanResult
// shape (severity counts alongside the raw findings), the form both the
// CLI's --json output and list/scan previews share.
func scanReportView(result *scanner.Result) map[string]any {
	counts := result.Counts()
	return map[string]any{
		"scan_id":               result.ScanID,
		"code_hash":             result.CodeHash,
		"sandbox_level":         result.SandboxLevel,
		"timestamp":             result.Timestamp,
		"findings":              result.Findings,
		"counts":                counts,
		"high_severity_count":   result.HighSeverityCount(),
		"has_hard_blocked":      result.HasHardBlocked(),
		"requires_confirmation": result.RequiresConfirmation(),
	}
}

func printScanReport(result *scanner.Result) {
	if len(result.Findings) == 0 {
		fmt.Println("no findings")
		return
	}
	for _, f := range result.Findings {
		fmt.Printf("%-8s %-20s line %-5d %s\n", f.Severity, f.RuleID, f.LineNumber, f.Description)
	}
	fmt.Printf("\n%d finding(s); high=%d hard_blocked=%v requires_confirmation=%v\n",
		len(result.Findings), result.HighSeverityCount(), result.HasHardBlocked(), result.RequiresConfirmation())
}
