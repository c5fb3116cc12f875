package credstore

import (
	"bytes"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	kerrors "github.com/systmms/keyrotate/internal/errors"
	"github.com/systmms/keyrotate/pkg/keys"
	ini "gopkg.in/ini.v1"
)

// Key names inside a profile section, as written by `aws configure`.
const (
	iniAccessKeyID     = "aws_access_key_id"
	iniSecretAccessKey = "aws_secret_access_key"
)

// FileStore stores profile credentials in the AWS shared credentials file.
// Writes preserve every unrelated section, key and comment in the file.
type FileStore struct {
	path string
}

// NewFileStore creates a store over the given credentials file. An empty
// path resolves to AWS_SHARED_CREDENTIALS_FILE or the SDK default
// (~/.aws/credentials).
func NewFileStore(path string) *FileStore {
	if path == "" {
		if env := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); env != "" {
			path = env
		} else {
			path = awsconfig.DefaultSharedCredentialsFilename()
		}
	}
	return &FileStore{path: path}
}

// Path returns the credentials file location this store operates on.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the stored key pair for a profile, nil if the profile is not
// present. An incomplete pair is returned as-is; the caller decides whether
// that is fatal.
func (s *FileStore) Get(profile string) (*keys.AccessKey, error) {
	f, err := ini.LooseLoad(s.path)
	if err != nil {
		return nil, kerrors.UserError{
			Message:    "Failed to parse credentials file",
			Details:    err.Error(),
			Suggestion: "Check the file is in the AWS shared credentials format",
			Err:        err,
		}
	}

	section, err := f.GetSection(profile)
	if err != nil {
		return nil, nil
	}

	return &keys.AccessKey{
		ID:     section.Key(iniAccessKeyID).String(),
		Secret: section.Key(iniSecretAccessKey).String(),
	}, nil
}

// Set writes the key pair into the profile section, creating the file and
// section as needed. Other keys in the section (region, session tokens set
// by other tools) are left untouched. The file is written with mode 0600.
func (s *FileStore) Set(profile string, key keys.AccessKey) error {
	f, err := ini.LooseLoad(s.path)
	if err != nil {
		return kerrors.UserError{
			Message: "Failed to parse credentials file",
			Details: err.Error(),
			Err:     err,
		}
	}

	section := f.Section(profile)
	section.Key(iniAccessKeyID).SetValue(key.ID)
	section.Key(iniSecretAccessKey).SetValue(key.Secret)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return err
	}
	return os.WriteFile(s.path, buf.Bytes(), 0o600)
}
