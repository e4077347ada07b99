package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentskill/skilllite/pkg/dispatch"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <dir>",
		Short: "Enumerate skills under a directory, with declared schemas",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}
	cmd.Flags().Bool("json", false, "emit full ToolMeta records as JSON instead of a one-line-per-skill summary")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	tools, err := dispatch.ListToolsWithMeta(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)
	}

	for _, t := range tools {
		kind := t.Language
		if t.IsBashTool {
			kind = "bash-tool"
		}
		fmt.Printf("%-24s %-10s %s\n", t.Name, kind, t.Description)
		if t.InputSchemaError != "" {
			fmt.Printf("  ! invalid: %s\n", t.InputSchemaError)
		}
	}
	return nil
}
