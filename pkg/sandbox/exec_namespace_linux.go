//go:build linux

// exec_namespace_linux.go implements the Level 2 tier on Linux: the
// interpreter runs in a fresh PID/mount/user namespace, optionally a
// fresh network namespace when outbound access is denied, with a
// trusted-bin-dir check against PATH-hijacking. Adapted from the
// teacher's sandbox.RestrictedExecutor.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// trustedBinDirs are the only directories this executor will resolve an
// interpreter from; anything else is a PATH-hijack risk.
var trustedBinDirs = []string{
	"/usr/bin",
	"/usr/local/bin",
	"/bin",
	"/opt/homebrew/bin",
}

// NamespaceExecutor is the Level 2 tier on Linux.
type NamespaceExecutor struct {
	cfg Config
}

// NewNamespaceExecutor constructs a Level 2 namespace-isolated executor.
func NewNamespaceExecutor(cfg Config) *NamespaceExecutor {
	return &NamespaceExecutor{cfg: cfg}
}

func (e *NamespaceExecutor) Name() string { return "namespace" }

// Available reports whether unprivileged user namespaces are enabled on
// this kernel; without them CLONE_NEWUSER fails for a non-root caller.
func (e *NamespaceExecutor) Available() bool {
	data, err := os.ReadFile("/proc/sys/kernel/unprivileged_userns_clone")
	if err != nil {
		// Kernel without the toggle (older RHEL-style) generally means
		// unprivileged user namespaces are unconditionally on.
		return true
	}
	return strings.TrimSpace(string(data)) != "0"
}

func (e *NamespaceExecutor) Close() error { return nil }

func (e *NamespaceExecutor) Execute(ctx context.Context, req ExecRequest, ectx ExecutionContext) (*ExecutionResult, error) {
	cmd, err := e.buildCommand(ctx, req, ectx)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin, ok := buildStdin(req); ok {
		cmd.Stdin = strings.NewReader(stdin)
	}

	runErr := cmd.Run()
	result := &ExecutionResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: ExitSuccess}

	if runErr != nil {
		switch typed := runErr.(type) {
		case *exec.ExitError:
			result.ExitCode = typed.ExitCode()
			if status, ok := typed.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				switch status.Signal() {
				case syscall.SIGKILL:
					result.Error = FailureMemoryLimitExceeded
				case syscall.SIGXCPU:
					result.Error = FailureTimeout
				}
			}
			if ctx.Err() != nil {
				result.ExitCode = ExitTimeout
				result.Error = FailureTimeout
			}
		default:
			return result, fmt.Errorf("namespace exec: %w", runErr)
		}
	}

	result.Success = result.ExitCode == ExitSuccess
	return result, nil
}

func (e *NamespaceExecutor) buildCommand(ctx context.Context, req ExecRequest, ectx ExecutionContext) (*exec.Cmd, error) {
	bin, args := resolveInterpreter(e.cfg, req)
	trusted, err := verifyTrustedBin(bin)
	if err != nil {
		return nil, err
	}
	args = append(args, req.Argv...)

	var cmd *exec.Cmd
	if ectx.MaxMemoryMB > 0 {
		cmd = exec.CommandContext(ctx, "/bin/sh", ulimitedShellArgs(trusted, args, ectx.MaxMemoryMB)...)
	} else {
		cmd = exec.CommandContext(ctx, trusted, args...)
	}

	if req.WorkDir != "" {
		cmd.Dir = req.WorkDir
	} else {
		cmd.Dir = req.SkillDir
	}
	cmd.Env = FilterEnv(req.Env)

	cloneFlags := uintptr(syscall.CLONE_NEWPID | syscall.CLONE_NEWNS | syscall.CLONE_NEWUSER)
	if !ectx.AllowNetwork {
		cloneFlags |= syscall.CLONE_NEWNET
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:    true,
		Cloneflags: cloneFlags,
		UidMappings: []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: os.Getuid(), Size: 1},
		},
		GidMappings: []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: os.Getgid(), Size: 1},
		},
	}
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return nil
	}

	return cmd, nil
}

// verifyTrustedBin resolves bin to an absolute path and rejects it unless
// it lives under one of trustedBinDirs, preventing a malicious PATH
// override (e.g. a skill directory prepended to PATH) from substituting a
// fake interpreter.
func verifyTrustedBin(bin string) (string, error) {
	resolved := bin
	if !filepath.IsAbs(bin) {
		found, err := exec.LookPath(bin)
		if err != nil {
			return "", fmt.Errorf("resolving interpreter %q: %w", bin, err)
		}
		resolved = found
	}
	dir := filepath.Dir(resolved)
	for _, trusted := range trustedBinDirs {
		if dir == trusted {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("interpreter %q resolves outside trusted bin dirs", resolved)
}

// ulimitedShellArgs wraps the interpreter invocation in a shell that sets
// RLIMIT_AS (ulimit -v, in KiB) before exec'ing it. This is best-effort:
// RLIMIT_AS over-counts mapped-but-unused address space for interpreters
// with a JIT or generational GC, and is unreliable against fork-heavy
// workloads. A hard cgroup-backed limit is only guaranteed by the Docker
// tier (exec_docker.go).
func ulimitedShellArgs(bin string, args []string, maxMemoryMB int) []string {
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, shellQuote(bin))
	for _, a := range args {
		quoted = append(quoted, shellQuote(a))
	}
	kib := strconv.Itoa(maxMemoryMB * 1024)
	script := "ulimit -v " + kib + " 2>/dev/null; exec " + strings.Join(quoted, " ")
	return []string{"-c", script}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
