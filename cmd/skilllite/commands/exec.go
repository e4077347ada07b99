package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentskill/skilllite/pkg/sandbox"
)

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <dir> <script> <input_json|->",
		Short: "Run an arbitrary script inside a skill directory",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runExec,
	}
	addExecFlags(cmd)
	cmd.Flags().StringSlice("arg", nil, "additional argv entries appended for CLI-style scripts")
	return cmd
}

func runExec(cmd *cobra.Command, args []string) error {
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

	inputArg := "-"
	if len(args) == 3 {
		inputArg = args[2]
	}
	input, err := readInputArg(inputArg)
	if err != nil {
		return err
	}

	runArgs := commonRunArgs(cmd, input)
	runArgs.SkillDir = args[0]
	runArgs.ScriptPath = args[1]
	runArgs.Argv, _ = cmd.Flags().GetStringSlice("arg")

	ctx := context.Background()
	result, err := disp.Run(ctx, sandbox.ModeExec, runArgs)
	if err != nil {
		return err
	}

	if result.ExitCode == sandbox.ExitSoftRiskConfirm {
		return handleSoftRisk(cmd, result)
	}

	return emitRunResult(cmd, disp, result)
}
