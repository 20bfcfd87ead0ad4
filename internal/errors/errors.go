package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthRequired     ErrorCode = "AUTH-001"
	ErrCodeAuthInvalid      ErrorCode = "AUTH-002"
	ErrCodeAuthExpired      ErrorCode = "AUTH-003"
	ErrCodeAuthUnauthorized ErrorCode = "AUTH-004"

	// Organization errors (ORG-001 to ORG-099)
	ErrCodeOrgNotFound     ErrorCode = "ORG-001"
	ErrCodeOrgNoneActive   ErrorCode = "ORG-002"
	ErrCodeOrgListFailed   ErrorCode = "ORG-003"
	ErrCodeOrgDisconnected ErrorCode = "ORG-004"

	// API errors (API-001 to API-099)
	ErrCodeAPIRequest     ErrorCode = "API-001"
	ErrCodeAPIResponse    ErrorCode = "API-002"
	ErrCodeAPIServerError ErrorCode = "API-003"
	ErrCodeAPITimeout     ErrorCode = "API-004"

	// Streaming errors (WS-001 to WS-099)
	ErrCodeWSConnectFailed ErrorCode = "WS-001"
	ErrCodeWSClosed        ErrorCode = "WS-002"
	ErrCodeWSBadFrame      ErrorCode = "WS-003"

	// Local state errors (STATE-001 to STATE-099)
	ErrCodeStateReadFailed  ErrorCode = "STATE-001"
	ErrCodeStateWriteFailed ErrorCode = "STATE-002"
	ErrCodeStateCorrupt     ErrorCode = "STATE-003"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound  ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-002"
	ErrCodeConfigUnmarshal ErrorCode = "CONFIG-003"

	// Data import errors (IMPORT-001 to IMPORT-099)
	ErrCodeImportFileNotFound ErrorCode = "IMPORT-001"
	ErrCodeImportParseFailed  ErrorCode = "IMPORT-002"
	ErrCodeImportNoRecords    ErrorCode = "IMPORT-003"
	ErrCodeImportBadMapping   ErrorCode = "IMPORT-004"
)

// OrgForgeError represents an enhanced error with code, suggestions, and documentation
type OrgForgeError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *OrgForgeError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	// Add documentation link
	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *OrgForgeError) Unwrap() error {
	return e.Cause
}

// New creates a new OrgForgeError
func New(code ErrorCode, message string) *OrgForgeError {
	return &OrgForgeError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new OrgForgeError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *OrgForgeError {
	return &OrgForgeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *OrgForgeError) WithSuggestion(suggestion string) *OrgForgeError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *OrgForgeError) WithSuggestions(suggestions ...string) *OrgForgeError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *OrgForgeError) WithDocs(url string) *OrgForgeError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewAuthRequiredError creates a not-logged-in error
func NewAuthRequiredError() *OrgForgeError {
	return New(ErrCodeAuthRequired, "not logged in").
		WithSuggestion("Run 'orgforge auth login' to authenticate").
		WithSuggestion("Check ORGFORGE_API_URL if your backend is not at the default address")
}

// NewSessionExpiredError creates an expired-session error
func NewSessionExpiredError() *OrgForgeError {
	return New(ErrCodeAuthExpired, "session has expired").
		WithSuggestion("Run 'orgforge auth login' to re-authenticate")
}

// NewNoActiveOrgError creates an error for commands that need an active org
func NewNoActiveOrgError() *OrgForgeError {
	return New(ErrCodeOrgNoneActive, "no active organization selected").
		WithSuggestion("Run 'orgforge orgs list' to see connected organizations").
		WithSuggestion("Run 'orgforge orgs use <orgId>' to select one").
		WithSuggestion("Run 'orgforge orgs connect' to connect a new organization")
}

// NewOrgNotFoundError creates an unknown-organization error
func NewOrgNotFoundError(orgID string) *OrgForgeError {
	return New(ErrCodeOrgNotFound, fmt.Sprintf("organization not found: %s", orgID)).
		WithSuggestion("Run 'orgforge orgs list' to see connected organizations")
}

// NewAPIRequestError creates a transport-level request error
func NewAPIRequestError(path string, cause error) *OrgForgeError {
	return Wrap(ErrCodeAPIRequest, fmt.Sprintf("request to %s failed", path), cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify the backend address with 'orgforge config show'")
}

// NewAPIResponseError creates an error from a non-2xx API response
func NewAPIResponseError(path string, status int, message string) *OrgForgeError {
	msg := fmt.Sprintf("%s returned status %d", path, status)
	if message != "" {
		msg = fmt.Sprintf("%s: %s", msg, message)
	}

	code := ErrCodeAPIResponse
	if status >= 500 {
		code = ErrCodeAPIServerError
	}
	return New(code, msg)
}

// NewWSConnectError creates a websocket connection error
func NewWSConnectError(endpoint string, cause error) *OrgForgeError {
	return Wrap(ErrCodeWSConnectFailed, fmt.Sprintf("websocket connection to %s failed", endpoint), cause).
		WithSuggestion("Check that the backend is running and reachable").
		WithSuggestion("Live progress is unavailable until the connection is restored")
}

// NewImportParseError creates a CSV parse error
func NewImportParseError(path string, cause error) *OrgForgeError {
	return Wrap(ErrCodeImportParseFailed, fmt.Sprintf("failed to parse CSV file: %s", path), cause).
		WithSuggestion("Check that the file is valid UTF-8 encoded CSV").
		WithSuggestion("The first row must contain column headers")
}

// NewConfigUnmarshalError creates a config parse error
func NewConfigUnmarshalError(path string, cause error) *OrgForgeError {
	return Wrap(ErrCodeConfigUnmarshal, fmt.Sprintf("failed to parse config file: %s", path), cause).
		WithSuggestion("Check the YAML syntax").
		WithSuggestion("Delete the file to fall back to defaults")
}
