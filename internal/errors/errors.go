package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Process exit codes.
const (
	ExitSuccess = 0
	// ExitUser covers bad input, bad config and failed probes.
	ExitUser = 1
	// ExitSystem covers I/O and environment failures outside the user's
	// control.
	ExitSystem = 2
)

// Probe failure kinds. Probes wrap these so commands and doctor checks can
// tell a slow server from a broken one.
var (
	ErrTimeout           = crdb.New("timed out")
	ErrMalformedResponse = crdb.New("malformed response")
	ErrNoTools           = crdb.New("no tool list in response")
	ErrHTTPStatus        = crdb.New("unexpected HTTP status")
	ErrNetwork           = crdb.New("network error")
	ErrProbeFailed       = crdb.New("probe failed")
)

// Configuration failures.
var (
	ErrNotFound      = crdb.New("resource not found")
	ErrInvalidConfig = crdb.New("invalid configuration")
)

// Helpers from github.com/cockroachdb/errors, so packages need one import.
var (
	New           = crdb.New
	Newf          = crdb.Newf
	Wrap          = crdb.Wrap
	Wrapf         = crdb.Wrapf
	WithDetail    = crdb.WithDetail
	WithHint      = crdb.WithHint
	GetAllDetails = crdb.GetAllDetails
	GetAllHints   = crdb.GetAllHints
	Is            = crdb.Is
	As            = crdb.As
	Mark          = crdb.Mark
)

// ExitError carries the exit code for main and a suggestion printed under
// the error. A nil Err means the command already reported the failure and
// main should exit quietly.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError sets the exit code for err, which may be nil.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError is an ExitUser failure with a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError is an ExitSystem failure with a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError points the user at doctor.
func NewConfigError(err error) *ExitError {
	return NewUserError(err, "Run: mcpcheck doctor")
}

// NewProbeError reports a failed probe whose output is already printed.
// A nil err becomes ErrProbeFailed.
func NewProbeError(err error, suggestion string) *ExitError {
	if err == nil {
		err = ErrProbeFailed
	}
	return NewUserError(err, suggestion)
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Silent reports whether main should exit without printing anything.
func (e *ExitError) Silent() bool {
	return e.Err == nil
}

// ExitCode maps err to a process exit code. Errors that are not ExitErrors
// exit with ExitUser.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}
