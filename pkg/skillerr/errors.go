// Package skillerr defines the stable error kinds shared by the sandbox
// executor, scanner, resolver and dispatcher. A single Kind enum keeps the
// CLI exit-code mapping and JSON-RPC error-code mapping in one place instead
// of duplicating string comparisons at every call site.
package skillerr

import (
	"errors"
	"fmt"
)

// Kind is a stable error classification, consistent across the CLI and the
// JSON-RPC daemon surface.
type Kind string

const (
	MissingManifest        Kind = "MissingManifest"
	InvalidManifest        Kind = "InvalidManifest"
	MissingEntryPoint      Kind = "MissingEntryPoint"
	UnsupportedLanguage    Kind = "UnsupportedLanguage"
	UnknownPackage         Kind = "UnknownPackage"
	EnvironmentBuildFailed Kind = "EnvironmentBuildFailed"
	ScanError              Kind = "ScanError"
	HardBlocked            Kind = "HardBlocked"
	ConfirmationRequired   Kind = "ConfirmationRequired"
	ExpiredScan            Kind = "ExpiredScan"
	DisallowedBashCommand  Kind = "DisallowedBashCommand"
	Timeout                Kind = "Timeout"
	MemoryLimitExceeded    Kind = "MemoryLimitExceeded"
	SandboxDeniedOperation Kind = "SandboxDeniedOperation"
	SubprocessCrash        Kind = "SubprocessCrash"
	InvalidRequest         Kind = "InvalidRequest"
	InternalError          Kind = "InternalError"
)

// Error is the typed error carried across the core's process boundary. It
// never escapes as a panic; package dispatch converts it to a CLI exit code
// or a JSON-RPC error object.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error around an existing error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// As extracts a *Error from err or its wrap chain, if any.
func As(err error) (*Error, bool) {
	var se *Error
	ok := errors.As(err, &se)
	return se, ok
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, else InternalError.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if se, ok := As(err); ok {
		return se.Kind
	}
	return InternalError
}
