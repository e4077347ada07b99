package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentskill/skilllite/pkg/dispatch"
	"github.com/agentskill/skilllite/pkg/scanner"
	"github.com/agentskill/skilllite/pkg/skill"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Inventory every skill under a directory with a security-scan preview of its entry point",
		Args:  cobra.ExactArgs(1),
		RunE:  runDirScan,
	}
	cmd.Flags().Bool("json", false, "emit the full inventory as JSON")
	return cmd
}

// skillPreview is one row of the directory-level inventory: a skill plus
// a preview scan of its entry point (bash-tool skills have none to scan).
type skillPreview struct {
	Name          string          `json:"name"`
	Dir           string          `json:"dir"`
	Language      string          `json:"language"`
	IsBashTool    bool            `json:"is_bash_tool"`
	LoadError     string          `json:"load_error,omitempty"`
	ScanPreview   map[string]any  `json:"scan_preview,omitempty"`
}

func runDirScan(cmd *cobra.Command, args []string) error {
	infos, err := dispatch.ListTools(args[0])
	if err != nil {
		return err
	}

	s := scanner.New()
	previews := make([]skillPreview, 0, len(infos))
	for _, info := range infos {
		meta, err := skill.Load(info.Dir)
		if err != nil {
			previews = append(previews, skillPreview{Name: info.Name, Dir: info.Dir, LoadError: err.Error()})
			continue
		}

		p := skillPreview{
			Name:       info.Name,
			Dir:        info.Dir,
			Language:   string(meta.Language),
			IsBashTool: meta.IsBashToolSkill(),
		}
		if !p.IsBashTool && meta.EntryPoint != "" {
			entry := filepath.Join(info.Dir, meta.EntryPoint)
			result := s.ScanFile(entry, meta.Language, "3")
			p.ScanPreview = scanReportView(result)
		}
		previews = append(previews, p)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(previews)
	}

	for _, p := range previews {
		if p.LoadError != "" {
			fmt.Printf("%-24s ERROR %s\n", p.Name, p.LoadError)
			continue
		}
		if p.IsBashTool {
			fmt.Printf("%-24s %-8s bash-tool (no static scan)\n", p.Name, p.Language)
			continue
		}
		high := 0
		hardBlocked := false
		if p.ScanPreview != nil {
			high, _ = p.ScanPreview["high_severity_count"].(int)
			hardBlocked, _ = p.ScanPreview["has_hard_blocked"].(bool)
		}
		fmt.Printf("%-24s %-8s high=%d hard_blocked=%v\n", p.Name, p.Language, high, hardBlocked)
	}
	return nil
}
