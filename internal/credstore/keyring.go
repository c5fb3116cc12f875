package credstore

import (
	"encoding/json"
	"errors"

	kerrors "github.com/systmms/keyrotate/internal/errors"
	"github.com/systmms/keyrotate/pkg/keys"
	"github.com/zalando/go-keyring"
)

// keyringService is the service name profiles are filed under in the OS
// credential store.
const keyringService = "keyrotate"

// keyringRecord is the JSON document stored per profile.
type keyringRecord struct {
	AccessKeyID     string `json:"aws_access_key_id"`
	SecretAccessKey string `json:"aws_secret_access_key"`
}

// KeyringStore stores profile credentials in the OS credential store
// (Keychain on macOS, Secret Service on Linux, Credential Manager on
// Windows), one record per profile.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a store backed by the OS credential store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService}
}

// Get returns the stored key pair for a profile, nil if absent.
func (s *KeyringStore) Get(profile string) (*keys.AccessKey, error) {
	raw, err := keyring.Get(s.service, profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, kerrors.UserError{
			Message:    "Failed to read from the OS credential store",
			Details:    err.Error(),
			Suggestion: "Check that a keyring daemon is available",
			Err:        err,
		}
	}

	var rec keyringRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, kerrors.UserError{
			Message: "Corrupt credential record in the OS credential store",
			Details: err.Error(),
			Err:     err,
		}
	}

	return &keys.AccessKey{ID: rec.AccessKeyID, Secret: rec.SecretAccessKey}, nil
}

// Set writes the key pair for a profile, replacing any existing record.
func (s *KeyringStore) Set(profile string, key keys.AccessKey) error {
	raw, err := json.Marshal(keyringRecord{
		AccessKeyID:     key.ID,
		SecretAccessKey: key.Secret,
	})
	if err != nil {
		return err
	}

	if err := keyring.Set(s.service, profile, string(raw)); err != nil {
		return kerrors.UserError{
			Message:    "Failed to write to the OS credential store",
			Details:    err.Error(),
			Suggestion: "Check that a keyring daemon is available",
			Err:        err,
		}
	}
	return nil
}
