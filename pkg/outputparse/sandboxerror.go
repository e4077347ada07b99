package outputparse

import "strings"

// sandboxErrorSignatures maps a substring seen in a sandboxed process's
// stderr to the user-facing label callers should surface instead of the
// raw OS message, which varies across kernels, Seatbelt versions, and
// interpreter runtimes (§4.8 format_sandbox_error).
var sandboxErrorSignatures = []struct {
	substr string
	label  string
}{
	{"BlockingIOError", "sandbox blocked a blocking I/O operation"},
	{"Operation not permitted", "sandbox denied a restricted operation"},
	{"seccomp", "sandbox denied a restricted syscall"},
	{"sandbox-exec", "sandbox denied a restricted operation"},
	{"Sandbox:", "sandbox denied a restricted operation"},
	{"namespace", "sandbox namespace isolation failed"},
	{"Permission denied", "sandbox denied a restricted operation"},
	{"Read-only file system", "sandbox denied a write outside the allowed directories"},
}

// FormatSandboxError classifies raw stderr into a stable, user-facing
// failure label. It returns the original stderr, trimmed, when no known
// signature matches.
func FormatSandboxError(stderr string) string {
	trimmed := strings.TrimSpace(stderr)
	for _, sig := range sandboxErrorSignatures {
		if strings.Contains(trimmed, sig.substr) {
			return sig.label
		}
	}
	return trimmed
}
