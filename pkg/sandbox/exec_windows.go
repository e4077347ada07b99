//go:build windows

// exec_windows.go stubs out the OS-primitive sandbox tiers on Windows,
// where neither Linux namespaces nor macOS Seatbelt apply: report
// unavailable rather than silently downgrading isolation.
package sandbox

import (
	"context"
	"errors"
)

// ErrWindowsSandboxNotSupported is returned by every Execute call on this
// tier; callers should fall back to the Docker executor when available.
var ErrWindowsSandboxNotSupported = errors.New("sandbox: OS-primitive isolation is not supported on windows, use the docker executor")

// NamespaceExecutor is the Windows stand-in for the Linux/macOS Level 2
// tier. It always reports unavailable.
type NamespaceExecutor struct{}

func NewNamespaceExecutor(cfg Config) *NamespaceExecutor { return &NamespaceExecutor{} }

func (e *NamespaceExecutor) Name() string    { return "namespace" }
func (e *NamespaceExecutor) Available() bool { return false }
func (e *NamespaceExecutor) Close() error    { return nil }

func (e *NamespaceExecutor) Execute(ctx context.Context, req ExecRequest, ectx ExecutionContext) (*ExecutionResult, error) {
	return nil, ErrWindowsSandboxNotSupported
}
