package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"

	"github.com/tranphatthinh/gramctl/internal/client/flow"
	"github.com/tranphatthinh/gramctl/internal/client/output"
	"github.com/tranphatthinh/gramctl/internal/client/review"
)

// Exit codes for different error scenarios
const (
	ExitSuccess          = 0 // Success
	ExitGeneralError     = 1 // General error (network failure, server 500, unknown error)
	ExitInvalidArguments = 2 // Invalid arguments/usage (missing fields, rejected input)
	ExitNotFound         = 3 // Resource not found (404)
	ExitConflict         = 4 // Conflict (409)
	ExitAuthError        = 5 // Authentication error (401, not logged in)
	ExitPermissionDenied = 6 // Permission denied (403)
)

// exit is swapped out by tests
var exit = os.Exit

// SetExit replaces the function the Exit helpers end with and returns a func
// restoring os.Exit. For tests of packages driving commands.
func SetExit(fn func(code int)) (restore func()) {
	orig := exit
	exit = fn
	return func() { exit = orig }
}

// ExitWithError prints error message and exits with the code matching err
func ExitWithError(err error, message string) {
	if message != "" {
		fmt.Fprintf(output.Stderr, "Error: %s: %v\n", message, err)
	} else {
		fmt.Fprintf(output.Stderr, "Error: %v\n", err)
	}
	exit(CodeFor(err))
}

// ExitWithCode prints error message and exits with specific code
func ExitWithCode(code int, message string) {
	if message != "" {
		fmt.Fprintf(output.Stderr, "Error: %s\n", message)
	}
	exit(code)
}

// ExitSilently exits with the code matching err. Used once the user has already been alerted.
func ExitSilently(err error) {
	exit(CodeFor(err))
}

// CodeFor maps an error returned by the client packages to an exit code
func CodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var rej *flow.RejectedError
	if stderrors.As(err, &rej) {
		return MapHTTPStatusToExitCode(rej.Status)
	}

	var apiErr *review.APIError
	if stderrors.As(err, &apiErr) {
		return MapHTTPStatusToExitCode(apiErr.Status)
	}

	switch {
	case stderrors.Is(err, flow.ErrNotLoggedIn):
		return ExitAuthError
	case stderrors.Is(err, flow.ErrInvalidForm), stderrors.Is(err, review.ErrEmptyText):
		return ExitInvalidArguments
	default:
		return ExitGeneralError
	}
}

// MapHTTPStatusToExitCode maps HTTP status codes to exit codes
func MapHTTPStatusToExitCode(statusCode int) int {
	switch statusCode {
	case http.StatusUnauthorized:
		return ExitAuthError
	case http.StatusForbidden:
		return ExitPermissionDenied
	case http.StatusNotFound:
		return ExitNotFound
	case http.StatusConflict:
		return ExitConflict
	case http.StatusBadRequest:
		return ExitInvalidArguments
	default:
		if statusCode >= 400 && statusCode < 500 {
			return ExitInvalidArguments
		}
		return ExitGeneralError
	}
}
