// Package sandbox implements the tiered OS-level isolation executor (C5):
// three isolation levels across three language runtimes, plus a bash
// allow-list mode, enforcing resource limits and network policy.
package sandbox

import (
	"os"
	"strconv"
	"strings"
)

// Level is the isolation tier, kept as the string values the wire protocol
// and CLI flags carry verbatim (§3 ExecutionContext.sandbox_level).
type Level string

const (
	Level1 Level = "1" // no isolation beyond resource limits
	Level2 Level = "2" // OS-primitive sandbox (Seatbelt or namespaces)
	Level3 Level = "3" // static scan gate + Level 2
)

// ExecutionContext is immutable once constructed; transitions produce a new
// value rather than mutating the receiver (§3).
type ExecutionContext struct {
	SandboxLevel     Level
	AllowNetwork     bool
	TimeoutSecs      int
	MaxMemoryMB      int
	AutoApprove      bool
	Confirmed        bool
	ScanID           string
	RequiresElevated bool
}

const (
	defaultTimeoutSecs = 120
	defaultMaxMemoryMB = 512
)

// DefaultContext builds an ExecutionContext from SKILLBOX_* environment
// defaults (§6 Environment variables), before any per-call overrides.
func DefaultContext() ExecutionContext {
	return ExecutionContext{
		SandboxLevel: Level(envOr("SKILLBOX_SANDBOX_LEVEL", "3")),
		AllowNetwork: envBool("SKILLBOX_ALLOW_NETWORK", false),
		TimeoutSecs:  envInt("SKILLBOX_TIMEOUT_SECS", defaultTimeoutSecs),
		MaxMemoryMB:  envInt("SKILLBOX_MAX_MEMORY_MB", defaultMaxMemoryMB),
		AutoApprove:  envBool("SKILLBOX_AUTO_APPROVE", false),
	}
}

// WithUserConfirmation implements the §3 transition: re-submitting with a
// matched scan_id downgrades to Level 2 and marks the request confirmed.
func (c ExecutionContext) WithUserConfirmation(scanID string) ExecutionContext {
	c.SandboxLevel = Level2
	c.Confirmed = true
	c.ScanID = scanID
	return c
}

// WithElevatedPermissions implements the §3 transition for skills declaring
// requires_elevated_permissions: they run at Level 1.
func (c ExecutionContext) WithElevatedPermissions() ExecutionContext {
	c.SandboxLevel = Level1
	c.RequiresElevated = true
	return c
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envBool parses the boolean vocabulary spec §6 requires:
// true/false/1/0/yes/no/on/off.
func envBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}
