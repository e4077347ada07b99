package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/agentskill/skilllite/pkg/config"
	"github.com/agentskill/skilllite/pkg/dispatch"
	"github.com/agentskill/skilllite/pkg/environment"
	"github.com/agentskill/skilllite/pkg/sandbox"
)

// buildDispatcher wires the environment builder, audit log, and the
// platform's tier executors into a Runner, the same construction every
// CLI verb and the daemon share.
func buildDispatcher(cfg *config.Config, log *slog.Logger) (*dispatch.Dispatcher, string, func(), error) {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		dir, err := environment.CacheDir()
		if err != nil {
			return nil, "", nil, fmt.Errorf("resolving cache dir: %w", err)
		}
		cacheDir = dir
	}

	auditPath := cfg.AuditDB
	if auditPath == "" {
		auditPath = filepath.Join(cacheDir, "audit.db")
	}
	audit, err := environment.OpenAuditLog(auditPath)
	if err != nil {
		log.Warn("audit log unavailable, continuing without it", "error", err)
		audit = nil
	}

	envBuilder, err := environment.NewBuilder(cacheDir, audit)
	if err != nil {
		return nil, "", nil, fmt.Errorf("constructing environment builder: %w", err)
	}

	sandboxCfg := sandbox.DefaultConfig()
	sandboxCfg.OutputDir = filepath.Join(cacheDir, "output")

	tier1 := sandbox.NewDirectExecutor(sandboxCfg)
	tier2 := sandbox.NewNamespaceExecutor(sandboxCfg)

	var tier2Doc *sandbox.DockerExecutor
	if runtime.GOOS == "windows" || !tier2.Available() {
		if doc, err := sandbox.NewDockerExecutor(sandboxCfg); err == nil {
			tier2Doc = doc
		} else {
			log.Warn("docker fallback executor unavailable", "error", err)
		}
	}

	runner := sandbox.NewRunner(sandboxCfg, envBuilder, tier1, tier2, tier2Doc)
	disp := dispatch.New(runner, log)

	cleanup := func() {
		if audit != nil {
			audit.Close()
		}
		if tier2Doc != nil {
			tier2Doc.Close()
		}
	}
	return disp, cacheDir, cleanup, nil
}
