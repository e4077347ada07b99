package sandbox

import (
	"context"

	"github.com/agentskill/skilllite/pkg/skill"
)

// Mode selects which CLI verb drove this request (§4.5).
type Mode string

const (
	ModeRun  Mode = "run"
	ModeExec Mode = "exec"
	ModeBash Mode = "bash"
)

// ExecRequest carries everything a tier executor needs to build a child
// process, independent of which isolation level handles it.
type ExecRequest struct {
	Mode       Mode
	SkillDir   string
	EntryPoint string // run
	ScriptPath string // exec
	Command    string // bash
	Language   skill.Language
	InputJSON  map[string]any
	Argv       []string
	Env        map[string]string
	WorkDir    string
	EnvPath    string // resolved language environment (from C3), may be empty
}

// Executor runs one ExecRequest under a specific isolation tier.
type Executor interface {
	Execute(ctx context.Context, req ExecRequest, ectx ExecutionContext) (*ExecutionResult, error)
	Name() string
	Available() bool
	Close() error
}

// scriptArg resolves the script path a tier executor should invoke: the
// entry point for run, the explicit script for exec, or empty for bash
// (which execs a command line, not a script).
func (r ExecRequest) scriptArg() string {
	switch r.Mode {
	case ModeRun:
		return r.EntryPoint
	case ModeExec:
		return r.ScriptPath
	default:
		return ""
	}
}
