package dispatch

import (
	"github.com/agentskill/skilllite/pkg/sandbox"
	"github.com/agentskill/skilllite/pkg/skillerr"
)

// ExitCodeFor maps a skillerr.Kind to the stable CLI exit-code contract
// from §4.6: 0 success, 1 generic failure, 2 soft-risk confirmation
// required, 3 invalid/expired scan id, 4 hard-blocked, 124 timeout.
func ExitCodeFor(kind skillerr.Kind) int {
	switch kind {
	case skillerr.ConfirmationRequired:
		return sandbox.ExitSoftRiskConfirm
	case skillerr.ExpiredScan:
		return sandbox.ExitInvalidExpiredScan
	case skillerr.HardBlocked:
		return sandbox.ExitHardBlocked
	case skillerr.Timeout:
		return sandbox.ExitTimeout
	case "":
		return sandbox.ExitSuccess
	default:
		return sandbox.ExitGenericFailure
	}
}

// RPCErrorCode maps a skillerr.Kind to a JSON-RPC 2.0 error code for the
// daemon's error responses. Domain failures that the CLI reports via exit
// code are reported over RPC as a structured result instead (so the
// caller doesn't need to special-case JSON-RPC transport errors vs. skill
// outcomes); this mapping only covers request-level failures.
func RPCErrorCode(kind skillerr.Kind) int {
	switch kind {
	case skillerr.InvalidRequest:
		return -32602 // Invalid params
	case skillerr.MissingManifest, skillerr.InvalidManifest, skillerr.MissingEntryPoint:
		return -32001
	case skillerr.InternalError:
		return -32603
	default:
		return -32000 // generic server error
	}
}
