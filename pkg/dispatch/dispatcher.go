// Package dispatch routes CLI verbs and JSON-RPC methods to the skill
// metadata reader, package resolver, environment builder and sandbox
// runner (C6), and maps their outcomes onto the stable CLI exit-code
// contract and JSON-RPC result/error shapes (§4.6).
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/agentskill/skilllite/pkg/environment"
	"github.com/agentskill/skilllite/pkg/outputparse"
	"github.com/agentskill/skilllite/pkg/resolver"
	"github.com/agentskill/skilllite/pkg/sandbox"
	"github.com/agentskill/skilllite/pkg/scanner"
	"github.com/agentskill/skilllite/pkg/skill"
	"github.com/agentskill/skilllite/pkg/skillerr"
)

// Dispatcher is the single entry point both the CLI commands and the
// daemon's worker pool call into.
type Dispatcher struct {
	runner *sandbox.Runner
	log    *slog.Logger
}

// New constructs a Dispatcher bound to a already-wired Runner.
func New(runner *sandbox.Runner, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Dispatcher{runner: runner, log: log.With("component", "dispatch")}
}

// ScanCache exposes the bound runner's scan-result cache, used by `serve`
// to wire the janitor's periodic sweep without exporting the Runner itself.
func (d *Dispatcher) ScanCache() *scanner.Cache { return d.runner.ScanCache() }

// RunArgs are the parameters shared by the run/exec/bash verbs.
type RunArgs struct {
	SkillDir     string
	ScriptPath   string // exec only
	Command      string // bash only
	Input        map[string]any
	Argv         []string
	Env          map[string]string
	WorkDir      string // bash only: caller's cwd, forwarded so output paths stay relative to it
	SandboxLevel sandbox.Level
	AllowNetwork bool
	TimeoutSecs  int
	MaxMemoryMB  int
	AutoApprove  bool
	Confirmed    bool
	ScanID       string
}

// Run loads the skill's metadata, resolves its package set (for run/exec),
// and executes it via the sandbox runner. It never returns a Go error for
// skill-domain failures — those are encoded in the returned
// *sandbox.ExecutionResult so callers (CLI, RPC) can map ExitCode/Error
// uniformly; a non-nil error here means the request itself was malformed.
func (d *Dispatcher) Run(ctx context.Context, mode sandbox.Mode, args RunArgs) (*sandbox.ExecutionResult, error) {
	meta, err := skill.Load(args.SkillDir)
	if err != nil {
		return resultFromError(err), nil
	}

	if mode != sandbox.ModeBash {
		res, err := resolver.Resolve(ctx, resolver.Options{
			SkillDir:      args.SkillDir,
			Compatibility: meta.Compatibility,
			Language:      meta.Language,
		})
		if err != nil {
			return resultFromError(err), nil
		}
		meta.ResolvedPackages = res.Packages
	}

	req := sandbox.ExecRequest{
		Mode:       mode,
		SkillDir:   args.SkillDir,
		EntryPoint: meta.EntryPoint,
		ScriptPath: args.ScriptPath,
		Command:    args.Command,
		Language:   meta.Language,
		InputJSON:  args.Input,
		Argv:       args.Argv,
		Env:        args.Env,
		WorkDir:    args.WorkDir,
	}

	ectx := sandbox.DefaultContext()
	if args.SandboxLevel != "" {
		ectx.SandboxLevel = args.SandboxLevel
	}
	ectx.AllowNetwork = args.AllowNetwork || ectx.AllowNetwork
	if args.TimeoutSecs > 0 {
		ectx.TimeoutSecs = args.TimeoutSecs
	}
	if args.MaxMemoryMB > 0 {
		ectx.MaxMemoryMB = args.MaxMemoryMB
	}
	ectx.AutoApprove = args.AutoApprove || ectx.AutoApprove
	if args.Confirmed && args.ScanID != "" {
		// Leave SandboxLevel untouched here: it must still read Level3 (the
		// default) so Runner.gate actually re-validates this scan_id against
		// its cached hash before downgrading. Downgrading to Level2 up front
		// would skip that validation and let any scan_id — forged, expired,
		// or belonging to a hard-blocked scan — through unchecked.
		ectx.Confirmed = true
		ectx.ScanID = args.ScanID
	}

	result, err := d.runner.Run(ctx, meta, req, ectx)
	if err != nil {
		return resultFromError(err), nil
	}
	return result, nil
}

// resultFromError maps a *skillerr.Error into the ExecutionResult shape so
// every caller (CLI exit-code mapping, RPC error mapping) has one place to
// read outcomes from, per ExitCodeFor in exitcodes.go.
func resultFromError(err error) *sandbox.ExecutionResult {
	kind := skillerr.KindOf(err)
	return &sandbox.ExecutionResult{
		Success:  false,
		ExitCode: ExitCodeFor(kind),
		Error:    string(kind),
		Stderr:   err.Error(),
	}
}

// ParseOutput extracts the skill's JSON envelope from its captured stdout
// using the requested strategy, falling back to a sandbox-error label when
// extraction fails and stderr carries a recognizable signature.
func (d *Dispatcher) ParseOutput(result *sandbox.ExecutionResult, strategy outputparse.Strategy) (any, error) {
	value, _, ok := outputparse.ExtractJSON(result.Stdout, strategy)
	if ok {
		return value, nil
	}
	if result.Stderr != "" {
		return nil, fmt.Errorf("%s", outputparse.FormatSandboxError(result.Stderr))
	}
	return nil, fmt.Errorf("no JSON output found in stdout")
}

// EnsureEnvironment pre-builds a skill's language environment without
// executing it: it reuses the cached environment when one exists and
// builds it otherwise.
func (d *Dispatcher) EnsureEnvironment(ctx context.Context, env *environment.Builder, meta *skill.Metadata) (string, error) {
	if env == nil {
		return "", nil
	}
	return env.Ensure(ctx, meta.Language, meta.ResolvedPackages)
}

// MarshalResult renders an ExecutionResult as the run/exec RPC result
// shape from §6: {"output": <string>, "exit_code": <int>}.
func MarshalResult(result *sandbox.ExecutionResult) ([]byte, error) {
	return json.Marshal(map[string]any{
		"output":    result.Stdout,
		"exit_code": result.ExitCode,
	})
}

// MarshalBashResult renders the bash RPC result shape from §6:
// {"stdout": <string>, "stderr": <string>, "exit_code": <int>}.
func MarshalBashResult(result *sandbox.ExecutionResult) ([]byte, error) {
	return json.Marshal(map[string]any{
		"stdout":    result.Stdout,
		"stderr":    result.Stderr,
		"exit_code": result.ExitCode,
	})
}
