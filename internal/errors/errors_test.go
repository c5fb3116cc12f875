package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorFormatting(t *testing.T) {
	err := UserError{
		Message:    "Failed to authenticate",
		Details:    "AccessDenied",
		Suggestion: "Check IAM permissions",
	}

	msg := err.Error()
	assert.Contains(t, msg, "Failed to authenticate")
	assert.Contains(t, msg, "Details: AccessDenied")
	assert.Contains(t, msg, "Try: Check IAM permissions")
}

func TestUserErrorFallsBackToWrapped(t *testing.T) {
	inner := stderrors.New("boom")
	err := UserError{Err: inner}

	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestUsageErrorUnwraps(t *testing.T) {
	inner := stderrors.New("unknown flag: --bogus")
	err := UsageError{Err: inner}

	assert.Equal(t, "unknown flag: --bogus", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestRotationTaxonomyMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "configuration",
			err:  ConfigurationError{Profile: "staging", Reason: "missing aws_secret_access_key"},
			want: "profile 'staging'",
		},
		{
			name: "inconsistent profiles",
			err: InconsistentProfilesError{
				Profiles: []string{"a", "b"},
				KeyIDs:   []string{"AKIAONE", "AKIATWO"},
			},
			want: "different access keys",
		},
		{
			name: "too many keys",
			err:  TooManyKeysError{Count: 2},
			want: "2 access keys",
		},
		{
			name: "key creation",
			err:  KeyCreationError{Reason: "provider returned an incomplete key pair"},
			want: "incomplete key pair",
		},
		{
			name: "verification",
			err:  VerificationError{Attempts: 20, Err: stderrors.New("InvalidClientTokenId")},
			want: "after 20 attempts",
		},
		{
			name: "propagation",
			err: PropagationError{
				Profile: "b",
				Updated: []string{"a"},
				Err:     stderrors.New("permission denied"),
			},
			want: "profiles already updated: a",
		},
		{
			name: "key deletion",
			err:  KeyDeletionError{KeyID: "AKIAOLD", Err: stderrors.New("DeleteConflict")},
			want: "AKIAOLD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.want)
		})
	}
}

func TestVerificationErrorUnwraps(t *testing.T) {
	inner := stderrors.New("timeout")
	err := VerificationError{Attempts: 3, Err: inner}
	assert.ErrorIs(t, err, inner)
}
