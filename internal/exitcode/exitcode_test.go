package exitcode

import (
	stderrors "errors"
	"testing"

	"github.com/orgforge/orgforge/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"AuthError", AuthError, 3},
		{"NoActiveOrg", NoActiveOrg, 4},
		{"NetworkError", NetworkError, 5},
		{"Interrupted", Interrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "auth required maps to auth error",
			err:      errors.NewAuthRequiredError(),
			expected: AuthError,
		},
		{
			name:     "expired session maps to auth error",
			err:      errors.NewSessionExpiredError(),
			expected: AuthError,
		},
		{
			name:     "no active org has its own code",
			err:      errors.NewNoActiveOrgError(),
			expected: NoActiveOrg,
		},
		{
			name:     "transport failure maps to network error",
			err:      errors.NewAPIRequestError("/orgs", stderrors.New("dial tcp: connection refused")),
			expected: NetworkError,
		},
		{
			name:     "coded server error maps to general error",
			err:      errors.NewAPIResponseError("/orgs", 500, "boom"),
			expected: GeneralError,
		},
		{
			name:     "plain unauthorized string maps to auth error",
			err:      stderrors.New("request unauthorized"),
			expected: AuthError,
		},
		{
			name:     "plain timeout string maps to network error",
			err:      stderrors.New("request timeout exceeded"),
			expected: NetworkError,
		},
		{
			name:     "unknown error maps to general error",
			err:      stderrors.New("something odd happened"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}
