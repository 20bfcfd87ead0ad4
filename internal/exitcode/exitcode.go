package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/orgforge/orgforge/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication or authorization failure
	AuthError = 3

	// NoActiveOrg indicates an org-scoped command ran without an active organization
	NoActiveOrg = 4

	// NetworkError indicates a network connectivity issue
	NetworkError = 5

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var ofErr *errors.OrgForgeError
	if stderrors.As(err, &ofErr) {
		switch ofErr.Code {
		case errors.ErrCodeAuthRequired, errors.ErrCodeAuthInvalid,
			errors.ErrCodeAuthExpired, errors.ErrCodeAuthUnauthorized:
			return AuthError
		case errors.ErrCodeOrgNoneActive:
			return NoActiveOrg
		case errors.ErrCodeAPIRequest, errors.ErrCodeAPITimeout,
			errors.ErrCodeWSConnectFailed:
			return NetworkError
		}
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "authentication") {
		return AuthError
	}
	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}
	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "required flag") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case AuthError:
		return "Authentication error"
	case NoActiveOrg:
		return "No active organization selected"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
