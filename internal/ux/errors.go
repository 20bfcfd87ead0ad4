package ux

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError analyzes an error and adds contextual suggestions
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	// Session errors
	if strings.Contains(errMsg, "not logged in") || strings.Contains(errMsg, "session expired") {
		return NewErrorWithSuggestion(err,
			"Log in with 'orgforge auth login'")
	}

	if strings.Contains(errMsg, "invalid credentials") {
		return NewErrorWithSuggestion(err,
			"Check your email and password, or register with 'orgforge auth register'")
	}

	// Organization errors
	if strings.Contains(errMsg, "no active organization") {
		return NewErrorWithSuggestion(err,
			"Connect an org with 'orgforge orgs connect' or pick one with 'orgforge orgs use <orgId>'")
	}

	if strings.Contains(errMsg, "organization") && strings.Contains(errMsg, "not found") {
		return NewErrorWithSuggestion(err,
			"List connected orgs with 'orgforge orgs list' and use an orgId from that output")
	}

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check that the backend is reachable; the API base URL is set in ~/.orgforge/config.yaml or ORGFORGE_API_URL")
	}

	if strings.Contains(errMsg, "context deadline exceeded") || strings.Contains(errMsg, "timeout") {
		return NewErrorWithSuggestion(err,
			"The backend took too long to respond. Retry, or check its health with 'orgforge health'")
	}

	// Config errors
	if strings.Contains(errMsg, "config") && (strings.Contains(errMsg, "parse") || strings.Contains(errMsg, "unmarshal")) {
		return NewErrorWithSuggestion(err,
			"Fix the YAML in ~/.orgforge/config.yaml, or delete it to fall back to defaults")
	}

	// Import errors
	if strings.Contains(errMsg, "csv") || strings.Contains(errMsg, "CSV") {
		return NewErrorWithSuggestion(err,
			"Check the CSV file: the first row must be a header and every row needs the same column count")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
