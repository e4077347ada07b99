package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/agentskill/skilllite/pkg/dispatch"
	"github.com/agentskill/skilllite/pkg/sandbox"
)

// Daemon serves one JSON-RPC 2.0 stdio session (`serve --stdio`), routing
// run/exec/bash/list_tools/list_tools_with_meta to the dispatcher through
// a fixed worker pool.
type Daemon struct {
	dispatcher *dispatch.Dispatcher
	skillsDir  string
	log        *slog.Logger
	poolSize   int
}

// New constructs a Daemon. skillsDir roots list_tools/list_tools_with_meta
// lookups; poolSize <= 0 uses SKILLBOX_IPC_POOL_SIZE or the default of 10.
func New(dispatcher *dispatch.Dispatcher, skillsDir string, log *slog.Logger, poolSize int) *Daemon {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	if poolSize <= 0 {
		poolSize = envPoolSize()
	}
	return &Daemon{dispatcher: dispatcher, skillsDir: skillsDir, log: log.With("component", "daemon"), poolSize: poolSize}
}

func envPoolSize() int {
	if v := os.Getenv("SKILLBOX_IPC_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultPoolSize
}

// Serve runs the stdio session until stdin hits EOF or ctx is cancelled
// (e.g. by a caught SIGTERM at the call site), draining the worker pool
// and returning once every in-flight request has a response written.
func (d *Daemon) Serve(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	requests := make(chan Request)
	malformed := make(chan Response, 16)
	responses := make(chan Response, d.poolSize*4)

	pool := NewWorkerPool(d.poolSize, d.poolSize*4, d.handle, responses)
	pool.Start(ctx)

	writerDone := make(chan error, 1)
	go func() { writerDone <- writeResponses(stdout, responses) }()

	go readRequests(stdin, requests, malformed)

	d.log.Info("daemon serving", "pool_size", d.poolSize)

readLoop:
	for {
		select {
		case req, ok := <-requests:
			if !ok {
				break readLoop
			}
			pool.Submit(req)
		case resp := <-malformed:
			responses <- resp
		case <-ctx.Done():
			break readLoop
		}
	}
drainMalformed:
	for {
		select {
		case resp := <-malformed:
			responses <- resp
		default:
			break drainMalformed
		}
	}

	pool.Drain()
	close(responses)
	d.log.Info("daemon drained, shutting down")
	return <-writerDone
}

func (d *Daemon) handle(ctx context.Context, req Request) Response {
	switch req.Method {
	case "run":
		return d.handleRun(ctx, req)
	case "exec":
		return d.handleExec(ctx, req)
	case "bash":
		return d.handleBash(ctx, req)
	case "list_tools":
		return d.handleListTools(ctx, req)
	case "list_tools_with_meta":
		return d.handleListToolsWithMeta(ctx, req)
	default:
		return errorResponse(req.ID, -32601, "method not found: "+req.Method)
	}
}

type runParams struct {
	SkillDir     string         `json:"skill_dir"`
	Input        map[string]any `json:"input"`
	SandboxLevel string         `json:"sandbox_level"`
	AllowNetwork bool           `json:"allow_network"`
	TimeoutSecs  int            `json:"timeout"`
	MaxMemoryMB  int            `json:"max_memory"`
	AutoApprove  bool           `json:"auto_approve"`
	Confirmed    bool           `json:"confirmed"`
	ScanID       string         `json:"scan_id"`
}

func (d *Daemon) handleRun(ctx context.Context, req Request) Response {
	var p runParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}
	result, err := d.dispatcher.Run(ctx, sandbox.ModeRun, dispatch.RunArgs{
		SkillDir:     p.SkillDir,
		Input:        p.Input,
		SandboxLevel: sandbox.Level(p.SandboxLevel),
		AllowNetwork: p.AllowNetwork,
		TimeoutSecs:  p.TimeoutSecs,
		MaxMemoryMB:  p.MaxMemoryMB,
		AutoApprove:  p.AutoApprove,
		Confirmed:    p.Confirmed,
		ScanID:       p.ScanID,
	})
	if err != nil {
		return errorResponse(req.ID, -32000, err.Error())
	}
	raw, _ := dispatch.MarshalResult(result)
	return rawResultResponse(req.ID, raw)
}

type execParams struct {
	SkillDir     string         `json:"skill_dir"`
	ScriptPath   string         `json:"script_path"`
	Input        map[string]any `json:"input"`
	Argv         []string       `json:"argv"`
	SandboxLevel string         `json:"sandbox_level"`
	AllowNetwork bool           `json:"allow_network"`
	TimeoutSecs  int            `json:"timeout"`
	MaxMemoryMB  int            `json:"max_memory"`
	Confirmed    bool           `json:"confirmed"`
	ScanID       string         `json:"scan_id"`
}

func (d *Daemon) handleExec(ctx context.Context, req Request) Response {
	var p execParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}
	result, err := d.dispatcher.Run(ctx, sandbox.ModeExec, dispatch.RunArgs{
		SkillDir:     p.SkillDir,
		ScriptPath:   p.ScriptPath,
		Input:        p.Input,
		Argv:         p.Argv,
		SandboxLevel: sandbox.Level(p.SandboxLevel),
		AllowNetwork: p.AllowNetwork,
		TimeoutSecs:  p.TimeoutSecs,
		MaxMemoryMB:  p.MaxMemoryMB,
		Confirmed:    p.Confirmed,
		ScanID:       p.ScanID,
	})
	if err != nil {
		return errorResponse(req.ID, -32000, err.Error())
	}
	raw, _ := dispatch.MarshalResult(result)
	return rawResultResponse(req.ID, raw)
}

type bashParams struct {
	SkillDir    string `json:"skill_dir"`
	Command     string `json:"command"`
	TimeoutSecs int    `json:"timeout"`
	Cwd         string `json:"cwd"`
}

func (d *Daemon) handleBash(ctx context.Context, req Request) Response {
	var p bashParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}
	result, err := d.dispatcher.Run(ctx, sandbox.ModeBash, dispatch.RunArgs{
		SkillDir:    p.SkillDir,
		Command:     p.Command,
		TimeoutSecs: p.TimeoutSecs,
		WorkDir:     p.Cwd,
	})
	if err != nil {
		return errorResponse(req.ID, -32000, err.Error())
	}
	raw, _ := dispatch.MarshalBashResult(result)
	return rawResultResponse(req.ID, raw)
}

func (d *Daemon) handleListTools(ctx context.Context, req Request) Response {
	tools, err := dispatch.ListTools(d.skillsDir)
	if err != nil {
		return errorResponse(req.ID, -32000, err.Error())
	}
	return successResponse(req.ID, map[string]any{"tools": tools})
}

func (d *Daemon) handleListToolsWithMeta(ctx context.Context, req Request) Response {
	tools, err := dispatch.ListToolsWithMeta(ctx, d.skillsDir)
	if err != nil {
		return errorResponse(req.ID, -32000, err.Error())
	}
	return successResponse(req.ID, map[string]any{"tools": tools})
}

// rawResultResponse embeds a pre-marshaled JSON object as the result
// field without double-encoding it.
func rawResultResponse(id int, raw []byte) Response {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return errorResponse(id, -32603, fmt.Sprintf("internal: marshaling result: %v", err))
	}
	return successResponse(id, v)
}
