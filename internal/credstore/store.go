// Package credstore reads and writes named profile credentials.
//
// Two backends exist: the AWS shared credentials file (the format the AWS
// CLI and SDKs read) and the OS credential store. The rotation orchestrator
// only sees the Store interface; it never caches results across a run.
package credstore

import (
	"fmt"

	"github.com/systmms/keyrotate/pkg/keys"
)

// Store is the credential store contract consumed by the orchestrator.
// Get returns nil (not an error) when the profile does not exist.
type Store interface {
	Get(profile string) (*keys.AccessKey, error)
	Set(profile string, key keys.AccessKey) error
}

// New builds the store selected in configuration. path only applies to the
// file backend and may be empty to use the SDK default location.
func New(kind, path string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(path), nil
	case "keyring":
		return NewKeyringStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential store '%s'", kind)
	}
}
