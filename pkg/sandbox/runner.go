package sandbox

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/agentskill/skilllite/pkg/environment"
	"github.com/agentskill/skilllite/pkg/scanner"
	"github.com/agentskill/skilllite/pkg/skill"
	"github.com/agentskill/skilllite/pkg/skillerr"
)

// mustMarshal is only used to size-check req.InputJSON before deciding
// argv vs stdin delivery; a marshal failure here means the map holds a
// value JSON cannot represent, which callers should have already rejected.
func mustMarshal(v map[string]any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

// Runner ties the scan gate, environment builder, and tier executors
// together into the single request flow every CLI verb and JSON-RPC
// method funnels through (§4.5).
type Runner struct {
	cfg      Config
	scanner  *scanner.Scanner
	cache    *scanner.Cache
	env      *environment.Builder
	tier1    Executor
	tier2    Executor
	tier2Doc *DockerExecutor // lazily used as fallback when tier2 is unavailable
}

// NewRunner wires the concrete executors for the host platform. tier2Doc
// may be nil when Docker is not configured; Run falls back to tier1 in
// that case rather than failing the whole request, since Level 1 still
// enforces resource limits even without an OS sandbox primitive.
func NewRunner(cfg Config, env *environment.Builder, tier1, tier2 Executor, tier2Doc *DockerExecutor) *Runner {
	return &Runner{
		cfg:      cfg,
		scanner:  scanner.New(),
		cache:    scanner.NewCache(),
		env:      env,
		tier1:    tier1,
		tier2:    tier2,
		tier2Doc: tier2Doc,
	}
}

// ScanCache exposes the runner's scan-result cache so the daemon's janitor
// can schedule its periodic sweep without reaching into Runner internals.
func (r *Runner) ScanCache() *scanner.Cache { return r.cache }

// Run executes one run/exec/bash request end to end per §4.5.1-§4.5.7:
// preflight scan at Level 3, resolve the language environment, select a
// tier executor, enforce the timeout, and categorize the outcome.
func (r *Runner) Run(ctx context.Context, meta *skill.Metadata, req ExecRequest, ectx ExecutionContext) (*ExecutionResult, error) {
	if meta.RequiresElevatedPermissions {
		ectx = ectx.WithElevatedPermissions()
	}

	if req.Mode == ModeBash {
		if err := ValidateBashCommand(req.Command, meta.AllowedBashPatterns); err != nil {
			return &ExecutionResult{ExitCode: ExitGenericFailure, Error: FailureDisallowedBashCommand, Success: false}, nil
		}
	}

	if ectx.SandboxLevel == Level3 {
		gateResult, outcome, err := r.gate(req, ectx)
		if err != nil {
			return nil, err
		}
		if outcome != nil {
			return outcome, nil
		}
		ectx.ScanID = gateResult.ScanID
		if ectx.Confirmed {
			// Verified confirmed resubmission: the gate matched this ScanID
			// against its cached hash. Only now is it safe to drop to Level 2.
			ectx.SandboxLevel = Level2
		}
	}

	if req.Mode != ModeBash && meta.Language != skill.LangBash && r.env != nil {
		envPath, err := r.env.Ensure(ctx, meta.Language, meta.ResolvedPackages)
		if err != nil {
			return nil, err
		}
		req.EnvPath = envPath
	}

	if req.Argv == nil && req.InputJSON != nil && !ShouldUseStdin(mustMarshal(req.InputJSON)) {
		req.Argv = BuildArgv(req.InputJSON)
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(ectx.TimeoutSecs)*time.Second)
	defer cancel()

	executor := r.selectExecutor(ectx)
	if executor == nil || !executor.Available() {
		return nil, skillerr.New(skillerr.InternalError, "no available sandbox executor for requested level")
	}

	result, err := executor.Execute(execCtx, req, ectx)
	if err != nil {
		return nil, skillerr.Wrap(skillerr.SubprocessCrash, "executing skill", err)
	}
	if result.ScanID == "" {
		result.ScanID = ectx.ScanID
	}
	return result, nil
}

// gate runs the Level 3 static scan and returns either a non-nil outcome
// (the request is fully decided — soft-risk prompt or hard block) or a
// nil outcome meaning the caller should proceed to Level 2 execution.
func (r *Runner) gate(req ExecRequest, ectx ExecutionContext) (*scanner.Result, *ExecutionResult, error) {
	scanOnce := func() *scanner.Result {
		if req.Mode == ModeBash {
			return r.scanner.Scan(req.Command, skill.LangBash, string(ectx.SandboxLevel))
		}
		source := req.ScriptPath
		if req.Mode == ModeRun {
			source = filepath.Join(req.SkillDir, req.EntryPoint)
		}
		return r.scanner.ScanFile(source, req.Language, string(ectx.SandboxLevel))
	}

	var scan *scanner.Result
	if ectx.Confirmed && ectx.ScanID != "" {
		// Re-submission after user confirmation: re-scan only to recompute
		// the code hash, then validate it against the hash bound to scan_id
		// instead of issuing a fresh scan_id, per §4.5.1 case 2's round trip.
		rescanned := scanOnce()
		if rescanned == nil {
			return nil, &ExecutionResult{ExitCode: ExitInvalidExpiredScan, Error: FailureExpiredScan}, nil
		}
		confirmed, ok := r.cache.ValidateConfirmation(ectx.ScanID, rescanned.CodeHash)
		if !ok {
			return nil, &ExecutionResult{ExitCode: ExitInvalidExpiredScan, Error: FailureExpiredScan, ScanID: ectx.ScanID}, nil
		}
		if confirmed.HasHardBlocked() {
			// Hard-block immutability (§8): no confirmed/scan_id combination
			// ever converts a hard-blocked scan into a success.
			return confirmed, &ExecutionResult{
				ExitCode:    ExitHardBlocked,
				Error:       FailureHardBlocked,
				HardBlocked: true,
				ScanID:      confirmed.ScanID,
				Output:      findingsOutput(confirmed),
			}, nil
		}
		return confirmed, nil, nil
	}

	scan = scanOnce()
	r.cache.Put(scan)

	switch {
	case scan.HasHardBlocked():
		return scan, &ExecutionResult{
			ExitCode:    ExitHardBlocked,
			Error:       FailureHardBlocked,
			HardBlocked: true,
			ScanID:      scan.ScanID,
			Output:      findingsOutput(scan),
		}, nil
	case scan.RequiresConfirmation() && !ectx.AutoApprove:
		return scan, &ExecutionResult{
			ExitCode: ExitSoftRiskConfirm,
			ScanID:   scan.ScanID,
			Output:   findingsOutput(scan),
		}, nil
	default:
		return scan, nil, nil
	}
}

func findingsOutput(scan *scanner.Result) map[string]any {
	return map[string]any{
		"scan_id":   scan.ScanID,
		"findings":  scan.Findings,
		"code_hash": scan.CodeHash,
	}
}

// selectExecutor resolves the tier for this request's effective sandbox
// level. Level 3 has already been consumed by the gate and always runs
// the underlying binary at Level 2.
func (r *Runner) selectExecutor(ectx ExecutionContext) Executor {
	switch ectx.SandboxLevel {
	case Level1:
		return r.tier1
	default:
		if r.tier2 != nil && r.tier2.Available() {
			return r.tier2
		}
		if r.tier2Doc != nil && r.tier2Doc.Available() {
			return r.tier2Doc
		}
		return r.tier1
	}
}
