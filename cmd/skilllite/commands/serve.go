package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentskill/skilllite/pkg/daemon"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON-RPC daemon over stdio",
		Long: `serve enters the long-lived daemon mode (C7): one JSON-RPC 2.0
request per stdin line, one response per stdout line, worker-pool
concurrency, amortizing binary and environment cold start across
requests from a single orchestrator process.`,
		RunE: runServe,
	}
	cmd.Flags().Bool("stdio", true, "serve over stdio (the only transport this core implements)")
	cmd.Flags().String("skills-dir", ".", "root directory list_tools/list_tools_with_meta enumerate")
	cmd.Flags().Int("pool-size", 0, "worker pool size (default from SKILLBOX_IPC_POOL_SIZE, else the config's daemon.pool_size, 10 unless set)")
	cmd.Flags().String("sweep-cron", "*/5 * * * *", "cron spec for the scan-cache/stale-env janitor sweep")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := buildLogger(cmd, cfg)

	disp, cacheDir, cleanup, err := buildDispatcher(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	skillsDir, _ := cmd.Flags().GetString("skills-dir")
	poolSize, _ := cmd.Flags().GetInt("pool-size")
	if poolSize <= 0 && os.Getenv("SKILLBOX_IPC_POOL_SIZE") == "" {
		poolSize = cfg.Daemon.PoolSize
	}
	sweepCron, _ := cmd.Flags().GetString("sweep-cron")

	janitor := daemon.NewJanitor(disp.ScanCache(), cacheDir, log)
	if err := janitor.Start(sweepCron); err != nil {
		log.Warn("janitor not started", "error", err)
	} else {
		defer janitor.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := daemon.New(disp, skillsDir, log, poolSize)
	return d.Serve(ctx, os.Stdin, os.Stdout)
}
