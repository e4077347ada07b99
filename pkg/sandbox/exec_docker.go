// exec_docker.go implements a container-based Level 2 fallback for
// platforms without a native OS-primitive sandbox (Windows, or a Linux
// host without unprivileged user namespaces), using the docker/docker
// client.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"

	"github.com/agentskill/skilllite/pkg/skill"
)

// dockerImages maps a skill language to the image used to run it. These
// images are expected to be pre-pulled by the operator; DockerExecutor
// never pulls on the hot path.
var dockerImages = map[skill.Language]string{
	skill.LangPython: "python:3.12-slim",
	skill.LangNode:   "node:20-slim",
	skill.LangBash:   "alpine:3.19",
}

// DockerExecutor is the container-backed Level 2 tier.
type DockerExecutor struct {
	cli *client.Client
	cfg Config
}

// NewDockerExecutor connects to the local Docker daemon via the standard
// environment-derived configuration (DOCKER_HOST, DOCKER_CERT_PATH, ...).
func NewDockerExecutor(cfg Config) (*DockerExecutor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker executor: %w", err)
	}
	return &DockerExecutor{cli: cli, cfg: cfg}, nil
}

func (e *DockerExecutor) Name() string { return "docker" }

func (e *DockerExecutor) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := e.cli.Ping(ctx)
	return err == nil
}

func (e *DockerExecutor) Close() error { return e.cli.Close() }

func (e *DockerExecutor) Execute(ctx context.Context, req ExecRequest, ectx ExecutionContext) (*ExecutionResult, error) {
	image, ok := dockerImages[req.Language]
	if !ok {
		return nil, fmt.Errorf("docker executor: no image configured for language %q", req.Language)
	}

	bin, baseArgs := resolveInterpreter(e.cfg, req)
	args := append(append([]string{bin}, baseArgs...), req.Argv...)

	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: req.SkillDir, Target: "/skill", ReadOnly: true},
		},
		Resources: container.Resources{
			Memory: int64(ectx.MaxMemoryMB) * 1024 * 1024,
		},
		AutoRemove: true,
	}
	if !ectx.AllowNetwork {
		hostCfg.NetworkMode = "none"
	}

	netCfg := &network.NetworkingConfig{}

	resp, err := e.cli.ContainerCreate(ctx, &container.Config{
		Image:      image,
		Cmd:        args,
		WorkingDir: "/skill",
		Env:        envSlice(req.Env),
	}, hostCfg, netCfg, nil, "")
	if err != nil {
		return nil, fmt.Errorf("docker executor: create: %w", err)
	}
	defer e.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})

	if err := e.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("docker executor: start: %w", err)
	}

	statusCh, errCh := e.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	var exitCode int
	select {
	case err := <-errCh:
		if err != nil && ctx.Err() != nil {
			return &ExecutionResult{ExitCode: ExitTimeout, Error: FailureTimeout}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("docker executor: wait: %w", err)
		}
	case status := <-statusCh:
		exitCode = int(status.StatusCode)
	}

	stdout, stderr, err := e.collectLogs(ctx, resp.ID)
	if err != nil {
		return nil, err
	}

	result := &ExecutionResult{
		ExitCode: exitCode,
		Success:  exitCode == ExitSuccess,
		Stdout:   stdout,
		Stderr:   stderr,
	}
	if exitCode == 137 {
		result.Error = FailureMemoryLimitExceeded
	}
	return result, nil
}

func (e *DockerExecutor) collectLogs(ctx context.Context, containerID string) (string, string, error) {
	reader, err := e.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", fmt.Errorf("docker executor: logs: %w", err)
	}
	defer reader.Close()

	var stdout, stderr bytes.Buffer
	if _, err := demuxDockerLog(reader, &stdout, &stderr); err != nil && err != io.EOF {
		return "", "", fmt.Errorf("docker executor: demux logs: %w", err)
	}
	return stdout.String(), stderr.String(), nil
}

// demuxDockerLog splits Docker's multiplexed log stream (an 8-byte header
// per frame identifying stdout/stderr) into two plain buffers.
func demuxDockerLog(r io.Reader, stdout, stderr io.Writer) (int64, error) {
	var total int64
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			return total, err
		}
		size := int(header[4])<<24 | int(header[5])<<16 | int(header[6])<<8 | int(header[7])
		dst := stdout
		if header[0] == 2 {
			dst = stderr
		}
		n, err := io.CopyN(dst, r, int64(size))
		total += n
		if err != nil {
			return total, err
		}
	}
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		if hasBlockedPrefix(k) {
			continue
		}
		out = append(out, k+"="+v)
	}
	return out
}
