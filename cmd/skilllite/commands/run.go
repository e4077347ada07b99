package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/agentskill/skilllite/pkg/dispatch"
	"github.com/agentskill/skilllite/pkg/outputparse"
	"github.com/agentskill/skilllite/pkg/sandbox"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <dir> <input_json|->",
		Short: "Run a skill via its declared entry point",
		Args:  cobra.ExactArgs(2),
		RunE:  runRun,
	}
	addExecFlags(cmd)
	return cmd
}

// addExecFlags registers the flags common to run/exec (§4.6).
func addExecFlags(cmd *cobra.Command) {
	cmd.Flags().String("sandbox-level", "", "sandbox level: 1, 2, or 3 (default from SKILLBOX_SANDBOX_LEVEL)")
	cmd.Flags().Bool("allow-network", false, "permit outbound network access")
	cmd.Flags().Int("timeout", 0, "wall-clock timeout in seconds")
	cmd.Flags().Int("max-memory", 0, "memory limit in MiB")
	cmd.Flags().Bool("auto-approve", false, "silently proceed past soft-risk findings")
	cmd.Flags().Bool("json", false, "emit machine-readable JSON instead of the raw skill output")
	cmd.Flags().Bool("confirm", false, "re-submit a soft-risk execution with --scan-id")
	cmd.Flags().String("scan-id", "", "scan_id returned by a prior soft-risk result, used with --confirm")
}

func readInputArg(arg string) (map[string]any, error) {
	var raw []byte
	var err error
	if arg == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw = []byte(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("input is not a JSON object: %w", err)
	}
	return input, nil
}

func commonRunArgs(cmd *cobra.Command, input map[string]any) dispatch.RunArgs {
	level, _ := cmd.Flags().GetString("sandbox-level")
	allowNetwork, _ := cmd.Flags().GetBool("allow-network")
	timeout, _ := cmd.Flags().GetInt("timeout")
	maxMemory, _ := cmd.Flags().GetInt("max-memory")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	confirmed, _ := cmd.Flags().GetBool("confirm")
	scanID, _ := cmd.Flags().GetString("scan-id")

	return dispatch.RunArgs{
		Input:        input,
		SandboxLevel: sandbox.Level(level),
		AllowNetwork: allowNetwork,
		TimeoutSecs:  timeout,
		MaxMemoryMB:  maxMemory,
		AutoApprove:  autoApprove,
		Confirmed:    confirmed,
		ScanID:       scanID,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
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

	input, err := readInputArg(args[1])
	if err != nil {
		return err
	}

	runArgs := commonRunArgs(cmd, input)
	runArgs.SkillDir = args[0]

	ctx := context.Background()
	result, err := disp.Run(ctx, sandbox.ModeRun, runArgs)
	if err != nil {
		return err
	}

	if result.ExitCode == sandbox.ExitSoftRiskConfirm {
		return handleSoftRisk(cmd, result)
	}

	return emitRunResult(cmd, disp, result)
}

// handleSoftRisk implements the interactive confirmation prompt from
// §11 DOMAIN STACK (x/term): when stdout is a TTY and --auto-approve was
// not set, prompt the user to re-submit with the scan_id; otherwise just
// report the soft-risk outcome and let the caller decide.
func handleSoftRisk(cmd *cobra.Command, result *sandbox.ExecutionResult) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut || !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(result.Output)
	}

	fmt.Fprintln(os.Stderr, "Security scan found potentially risky operations; re-run with:")
	fmt.Fprintf(os.Stderr, "  --auto-approve   (skip confirmation)\n")
	fmt.Fprintf(os.Stderr, "  or resubmit with --confirm --scan-id %v\n", result.Output["scan_id"])
	os.Exit(sandbox.ExitSoftRiskConfirm)
	return nil
}

func emitRunResult(cmd *cobra.Command, disp *dispatch.Dispatcher, result *sandbox.ExecutionResult) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		value, err := disp.ParseOutput(result, outputparse.StrategyAuto)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			enc := json.NewEncoder(os.Stdout)
			enc.Encode(value)
		}
	} else {
		fmt.Print(result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	os.Exit(result.ExitCode)
	return nil
}
