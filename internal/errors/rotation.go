package errors

import (
	"fmt"
	"strings"
)

// The rotation error taxonomy. Each orchestrator step fails with exactly one
// of these types; all of them are terminal for the run. Only the bounded
// verification loop retries, and its exhaustion surfaces as VerificationError.

// ConfigurationError indicates a profile is missing or lacks a complete
// access key pair in the credential store.
type ConfigurationError struct {
	Profile string
	Reason  string
}

func (e ConfigurationError) Error() string {
	msg := fmt.Sprintf("profile '%s': %s", e.Profile, e.Reason)
	return msg + "\n  💡 Check the credentials file or run 'aws configure --profile " + e.Profile + "'"
}

// InconsistentProfilesError indicates the profiles in one rotation reference
// different access key IDs and therefore different identities.
type InconsistentProfilesError struct {
	Profiles []string
	KeyIDs   []string
}

func (e InconsistentProfilesError) Error() string {
	return fmt.Sprintf("profiles [%s] reference different access keys [%s]; rotation requires a single identity\n  💡 Use --force to rotate using the first profile's key",
		strings.Join(e.Profiles, ", "), strings.Join(e.KeyIDs, ", "))
}

// TooManyKeysError indicates the identity already has more than one live
// access key, so rotation cannot create another.
type TooManyKeysError struct {
	Count int
}

func (e TooManyKeysError) Error() string {
	return fmt.Sprintf("identity has %d access keys; rotation requires exactly one\n  💡 Delete the unused key, or use --force to remove every key except the active one", e.Count)
}

// KeyCreationError indicates the provider returned an incomplete key pair.
type KeyCreationError struct {
	Reason string
	Err    error
}

func (e KeyCreationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to create access key: %s: %v", e.Reason, e.Err)
	}
	return "failed to create access key: " + e.Reason
}

func (e KeyCreationError) Unwrap() error {
	return e.Err
}

// VerificationError indicates the new key never became usable within the
// retry budget. The orchestrator has already rolled back: the new key was
// deleted and the old key is still the active credential.
type VerificationError struct {
	Attempts int
	Err      error
}

func (e VerificationError) Error() string {
	return fmt.Sprintf("new access key was not usable after %d attempts; rolled back to the previous key: %v", e.Attempts, e.Err)
}

func (e VerificationError) Unwrap() error {
	return e.Err
}

// PropagationError indicates the new key could not be written to a profile.
// Profiles listed in Updated already hold the new key and are not reverted;
// a rerun only needs --force if some profiles still hold the old key.
type PropagationError struct {
	Profile string
	Updated []string
	Err     error
}

func (e PropagationError) Error() string {
	msg := fmt.Sprintf("failed to write new access key to profile '%s': %v", e.Profile, e.Err)
	if len(e.Updated) > 0 {
		msg += fmt.Sprintf(" (profiles already updated: %s)", strings.Join(e.Updated, ", "))
	}
	return msg
}

func (e PropagationError) Unwrap() error {
	return e.Err
}

// KeyDeletionError indicates the old key could not be retired. All profiles
// already hold the new key; the stale key must be deleted by hand or by the
// next run's count check.
type KeyDeletionError struct {
	KeyID string
	Err   error
}

func (e KeyDeletionError) Error() string {
	return fmt.Sprintf("failed to delete old access key %s: %v", e.KeyID, e.Err)
}

func (e KeyDeletionError) Unwrap() error {
	return e.Err
}
