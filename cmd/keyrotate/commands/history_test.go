package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/keyrotate/internal/config"
	"github.com/systmms/keyrotate/internal/logging"
	"github.com/systmms/keyrotate/internal/rotation"
	"github.com/systmms/keyrotate/internal/rotation/storage"
)

func testConfig() *config.Config {
	return &config.Config{Logger: logging.New(false, true)}
}

func seedHistory(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("KEYROTATE_HISTORY_DIR", dir)

	store := storage.New(dir)
	base := time.Date(2026, 8, 25, 4, 17, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(&rotation.Result{
		Status:     rotation.StatusSucceeded,
		Profiles:   []string{"default"},
		OldKeyID:   "AKIAOLDKEY0000001",
		NewKeyID:   "AKIANEWKEY0000001",
		StartedAt:  base,
		FinishedAt: base.Add(14 * time.Second),
	}))
	require.NoError(t, store.SaveRun(&rotation.Result{
		Status:     rotation.StatusRolledBack,
		Profiles:   []string{"work", "personal"},
		OldKeyID:   "AKIAOLDKEY0000002",
		StartedAt:  base.Add(time.Hour),
		FinishedAt: base.Add(time.Hour + time.Minute),
	}))
}

func TestHistoryCommandTable(t *testing.T) {
	seedHistory(t)

	output := captureOutput(t, NewHistoryCommand(testConfig()), nil)

	assert.Contains(t, output, "STARTED")
	assert.Contains(t, output, "succeeded")
	assert.Contains(t, output, "rolled_back")
	assert.Contains(t, output, "work,personal")
	// Key IDs are masked in the table.
	assert.NotContains(t, output, "AKIAOLDKEY0000001")
	assert.Contains(t, output, "AKIA****0001")
}

func TestHistoryCommandNewestFirst(t *testing.T) {
	seedHistory(t)

	output := captureOutput(t, NewHistoryCommand(testConfig()), nil)

	rolledBack := bytes.Index([]byte(output), []byte("rolled_back"))
	succeeded := bytes.Index([]byte(output), []byte("succeeded"))
	require.NotEqual(t, -1, rolledBack)
	require.NotEqual(t, -1, succeeded)
	assert.Less(t, rolledBack, succeeded)
}

func TestHistoryCommandLimit(t *testing.T) {
	seedHistory(t)

	output := captureOutput(t, NewHistoryCommand(testConfig()), []string{"--limit", "1"})

	assert.Contains(t, output, "rolled_back")
	assert.NotContains(t, output, "succeeded")
}

func TestHistoryCommandJSON(t *testing.T) {
	seedHistory(t)

	output := captureOutput(t, NewHistoryCommand(testConfig()), []string{"--json"})

	var runs []rotation.Result
	require.NoError(t, json.Unmarshal([]byte(output), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, rotation.StatusRolledBack, runs[0].Status)
	assert.Equal(t, rotation.StatusSucceeded, runs[1].Status)
}

func TestHistoryCommandEmpty(t *testing.T) {
	t.Setenv("KEYROTATE_HISTORY_DIR", t.TempDir())

	output := captureOutput(t, NewHistoryCommand(testConfig()), nil)

	assert.Contains(t, output, "No rotation runs recorded")
}

// captureOutput captures command stdout for testing.
func captureOutput(t *testing.T, cmd *cobra.Command, args []string) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	if args != nil {
		cmd.SetArgs(args)
	}

	err := cmd.Execute()
	require.NoError(t, err)

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	return buf.String()
}
