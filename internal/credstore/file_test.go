package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/keyrotate/pkg/keys"
)

func tempCredFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return path
}

func TestFileStoreGet(t *testing.T) {
	path := tempCredFile(t, `[default]
aws_access_key_id = AKIAOLDKEY
aws_secret_access_key = oldsecret

[staging]
aws_access_key_id = AKIASTAGING
aws_secret_access_key = stagingsecret
region = eu-west-1
`)
	store := NewFileStore(path)

	key, err := store.Get("default")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, "AKIAOLDKEY", key.ID)
	assert.Equal(t, "oldsecret", key.Secret)

	key, err = store.Get("staging")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, "AKIASTAGING", key.ID)
}

func TestFileStoreGetMissingProfile(t *testing.T) {
	store := NewFileStore(tempCredFile(t, "[default]\naws_access_key_id = AKIA\n"))

	key, err := store.Get("absent")
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestFileStoreGetMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "credentials"))

	key, err := store.Get("default")
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestFileStoreGetIncompletePair(t *testing.T) {
	store := NewFileStore(tempCredFile(t, "[default]\naws_access_key_id = AKIAONLY\n"))

	key, err := store.Get("default")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, "AKIAONLY", key.ID)
	assert.False(t, key.Complete())
}

func TestFileStoreSetPreservesOtherContent(t *testing.T) {
	path := tempCredFile(t, `[default]
aws_access_key_id = AKIAOLDKEY
aws_secret_access_key = oldsecret
region = us-east-1

[other]
aws_access_key_id = AKIAOTHER
aws_secret_access_key = othersecret
`)
	store := NewFileStore(path)

	require.NoError(t, store.Set("default", keys.AccessKey{ID: "AKIANEWKEY", Secret: "newsecret"}))

	key, err := store.Get("default")
	require.NoError(t, err)
	assert.Equal(t, "AKIANEWKEY", key.ID)
	assert.Equal(t, "newsecret", key.Secret)

	// Unrelated keys and sections survive the rewrite.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "region")
	assert.Contains(t, string(content), "us-east-1")
	assert.Contains(t, string(content), "AKIAOTHER")
	assert.NotContains(t, string(content), "AKIAOLDKEY")
}

func TestFileStoreSetCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aws", "credentials")
	store := NewFileStore(path)

	require.NoError(t, store.Set("default", keys.AccessKey{ID: "AKIANEW", Secret: "s"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	key, err := store.Get("default")
	require.NoError(t, err)
	assert.Equal(t, "AKIANEW", key.ID)
}

func TestNewFileStoreHonorsEnvOverride(t *testing.T) {
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/tmp/elsewhere")
	store := NewFileStore("")
	assert.Equal(t, "/tmp/elsewhere", store.Path())
}
