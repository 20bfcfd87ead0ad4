package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := New(ErrCodeOrgNotFound, "organization not found: 00Dxx")

	assert.Contains(t, err.Error(), "[ORG-001]")
	assert.Contains(t, err.Error(), "organization not found: 00Dxx")
}

func TestError_WithCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeAPIRequest, "request to /orgs failed", cause)

	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))
}

func TestError_Suggestions(t *testing.T) {
	err := New(ErrCodeAuthRequired, "not logged in").
		WithSuggestion("Run 'orgforge auth login' to authenticate")

	assert.Contains(t, err.Error(), "Suggestions:")
	assert.Contains(t, err.Error(), "orgforge auth login")
}

func TestError_As(t *testing.T) {
	var err error = NewNoActiveOrgError()

	var ofErr *OrgForgeError
	require.True(t, stderrors.As(err, &ofErr))
	assert.Equal(t, ErrCodeOrgNoneActive, ofErr.Code)
}

func TestNewAPIResponseError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		wantCode ErrorCode
	}{
		{name: "client error", status: 404, message: "not found", wantCode: ErrCodeAPIResponse},
		{name: "server error", status: 500, message: "", wantCode: ErrCodeAPIServerError},
		{name: "bad gateway", status: 502, message: "upstream down", wantCode: ErrCodeAPIServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIResponseError("/orgs", tt.status, tt.message)
			assert.Equal(t, tt.wantCode, err.Code)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}
