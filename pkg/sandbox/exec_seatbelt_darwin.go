//go:build darwin

// exec_seatbelt_darwin.go implements the Level 2 tier on macOS using the
// system sandbox-exec(1) profile compiler. There is no namespace
// primitive on Darwin comparable to Linux's CLONE_NEW*, so isolation is
// expressed as a Seatbelt (scheme-like) profile: deny by default, allow
// file reads anywhere and process exec/fork without restriction, allow
// writes only under the skill directory, the working directory, the
// resolved output directory and the OS temp dir, and (when allow_network
// is set) outbound TCP on 80/443 plus DNS.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

// SeatbeltExecutor is the Level 2 tier on macOS.
type SeatbeltExecutor struct {
	cfg Config
}

// NewSeatbeltExecutor constructs a Level 2 Seatbelt-isolated executor.
func NewSeatbeltExecutor(cfg Config) *SeatbeltExecutor {
	return &SeatbeltExecutor{cfg: cfg}
}

func (e *SeatbeltExecutor) Name() string { return "seatbelt" }

func (e *SeatbeltExecutor) Available() bool {
	_, err := exec.LookPath("sandbox-exec")
	return err == nil
}

func (e *SeatbeltExecutor) Close() error { return nil }

func (e *SeatbeltExecutor) Execute(ctx context.Context, req ExecRequest, ectx ExecutionContext) (*ExecutionResult, error) {
	cmd, profilePath, err := e.buildCommand(ctx, req, ectx)
	if err != nil {
		return nil, err
	}
	defer os.Remove(profilePath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin, ok := buildStdin(req); ok {
		cmd.Stdin = strings.NewReader(stdin)
	}

	runErr := cmd.Run()
	result := &ExecutionResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: ExitSuccess}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			if ctx.Err() != nil {
				result.ExitCode = ExitTimeout
				result.Error = FailureTimeout
			} else if strings.Contains(stderr.String(), "Operation not permitted") || strings.Contains(stderr.String(), "Sandbox:") {
				result.Error = FailureSandboxDeniedOperation
			}
		} else {
			return result, fmt.Errorf("seatbelt exec: %w", runErr)
		}
	}

	result.Success = result.ExitCode == ExitSuccess
	return result, nil
}

func (e *SeatbeltExecutor) buildCommand(ctx context.Context, req ExecRequest, ectx ExecutionContext) (*exec.Cmd, string, error) {
	bin, args := resolveInterpreter(e.cfg, req)
	args = append(args, req.Argv...)

	profile := seatbeltProfile(req, ectx, e.cfg)
	profileFile, err := os.CreateTemp("", "skilllite-seatbelt-*.sb")
	if err != nil {
		return nil, "", fmt.Errorf("writing seatbelt profile: %w", err)
	}
	if _, err := profileFile.WriteString(profile); err != nil {
		profileFile.Close()
		os.Remove(profileFile.Name())
		return nil, "", fmt.Errorf("writing seatbelt profile: %w", err)
	}
	profileFile.Close()

	fullArgs := append([]string{"-f", profileFile.Name(), bin}, args...)
	cmd := exec.CommandContext(ctx, "sandbox-exec", fullArgs...)

	if req.WorkDir != "" {
		cmd.Dir = req.WorkDir
	} else {
		cmd.Dir = req.SkillDir
	}
	cmd.Env = FilterEnv(req.Env)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return nil
	}

	return cmd, profileFile.Name(), nil
}

// seatbeltProfile renders a deny-by-default Seatbelt profile. File reads
// and process exec/fork are allowed everywhere; writes are confined to the
// listed directories and network access is allowed only with allow_network.
func seatbeltProfile(req ExecRequest, ectx ExecutionContext, cfg Config) string {
	var b strings.Builder
	b.WriteString("(version 1)\n(deny default)\n")
	b.WriteString("(allow process-exec)\n")
	b.WriteString("(allow process-fork)\n")
	b.WriteString("(allow file-read*)\n")

	writable := []string{req.SkillDir, os.TempDir()}
	if cfg.OutputDir != "" {
		writable = append(writable, cfg.OutputDir)
	}
	if req.WorkDir != "" {
		writable = append(writable, req.WorkDir)
	}
	for _, dir := range writable {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "(allow file-write* (subpath %q))\n", abs)
	}

	b.WriteString("(allow signal (target self))\n")
	b.WriteString("(allow sysctl-read)\n")

	if ectx.AllowNetwork {
		b.WriteString("(allow network-outbound (remote tcp \"*:80\"))\n")
		b.WriteString("(allow network-outbound (remote tcp \"*:443\"))\n")
		b.WriteString("(allow network*  (local udp \"*:*\") (remote udp \"*:53\"))\n") // DNS
	} else {
		b.WriteString("(deny network*)\n")
	}

	return b.String()
}
