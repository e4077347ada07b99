package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentskill/skilllite/pkg/dispatch"
	"github.com/agentskill/skilllite/pkg/sandbox"
)

func newBashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bash <dir> <command...>",
		Short: "Run an allow-listed shell command declared by a bash-tool skill",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runBash,
	}
	cmd.Flags().Int("timeout", 0, "wall-clock timeout in seconds")
	cmd.Flags().String("cwd", "", "caller's working directory, forwarded so output paths stay relative to it")
	cmd.Flags().Bool("json", false, "emit {stdout,stderr,exit_code} as JSON instead of raw stdio")
	return cmd
}

func runBash(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := buildLogger(cmd, cfg)

	disp, _, cleanup, err := buildDispatcher(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	timeout, _ := cmd.Flags().GetInt("timeout")
	cwd, _ := cmd.Flags().GetString("cwd")

	result, err := disp.Run(context.Background(), sandbox.ModeBash, dispatch.RunArgs{
		SkillDir:    args[0],
		Command:     strings.Join(args[1:], " "),
		TimeoutSecs: timeout,
		WorkDir:     cwd,
	})
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		raw, _ := dispatch.MarshalBashResult(result)
		fmt.Println(string(raw))
	} else {
		fmt.Print(result.Stdout)
		if result.Stderr != "" {
			fmt.Fprint(os.Stderr, result.Stderr)
		}
	}

	if result.ExitCode == sandbox.ExitGenericFailure && result.Error != "" {
		fmt.Fprintln(os.Stderr, result.Error)
	}

	os.Exit(result.ExitCode)
	return nil
}

// asJSON renders v as two-space-indented JSON, falling back to fmt's %v
// form when v cannot be marshaled.
func asJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
