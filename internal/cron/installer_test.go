package cron

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/keyrotate/internal/logging"
)

// fakeExecutor plays the crontab command: -l returns the stored table,
// - replaces it from stdin.
type fakeExecutor struct {
	table   string
	hasTab  bool
	listErr error
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	if f.listErr != nil {
		return nil, []byte("crontab: command failed"), f.listErr
	}
	if !f.hasTab {
		return nil, []byte("no crontab for alice"), errors.New("exit status 1")
	}
	return []byte(f.table), nil, nil
}

func (f *fakeExecutor) ExecuteInput(_ context.Context, input []byte, name string, args ...string) ([]byte, []byte, error) {
	f.table = string(input)
	f.hasTab = true
	return nil, nil, nil
}

func newTestInstaller(executor *fakeExecutor) *Installer {
	i := NewInstaller(executor, logging.New(false, true))
	i.pickMinute = func() int { return 17 }
	return i
}

func TestInstallIntoEmptyCrontab(t *testing.T) {
	executor := &fakeExecutor{}
	i := newTestInstaller(executor)

	require.NoError(t, i.Install(context.Background(), 4, "/usr/bin/keyrotate"))

	assert.Equal(t, Marker+"\n17 4 * * * /usr/bin/keyrotate\n", executor.table)
}

func TestInstallPreservesExistingEntries(t *testing.T) {
	executor := &fakeExecutor{
		table:  "0 0 * * * /usr/bin/backup\n",
		hasTab: true,
	}
	i := newTestInstaller(executor)

	require.NoError(t, i.Install(context.Background(), 4, "/usr/bin/keyrotate"))

	lines := strings.Split(strings.TrimRight(executor.table, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0 0 * * * /usr/bin/backup", lines[0])
	assert.Equal(t, Marker, lines[1])
	assert.Equal(t, "17 4 * * * /usr/bin/keyrotate", lines[2])
}

func TestInstallTwiceReplacesEntry(t *testing.T) {
	executor := &fakeExecutor{}
	i := newTestInstaller(executor)

	require.NoError(t, i.Install(context.Background(), 4, "/usr/bin/keyrotate"))
	require.NoError(t, i.Install(context.Background(), 6, "/usr/bin/keyrotate"))

	assert.Equal(t, 1, strings.Count(executor.table, Marker))
	assert.Contains(t, executor.table, "17 6 * * * /usr/bin/keyrotate")
	assert.NotContains(t, executor.table, "17 4")
}

func TestInstallRejectsInvalidHour(t *testing.T) {
	i := newTestInstaller(&fakeExecutor{})

	err := i.Install(context.Background(), 24, "/usr/bin/keyrotate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid cron hour")
}

func TestInstallCrontabReadFailure(t *testing.T) {
	executor := &fakeExecutor{listErr: errors.New("exit status 127")}
	i := newTestInstaller(executor)

	err := i.Install(context.Background(), 4, "/usr/bin/keyrotate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read the current crontab")
}

func TestUninstallRemovesOnlyOwnedLines(t *testing.T) {
	executor := &fakeExecutor{
		table:  "0 0 * * * /usr/bin/backup\n" + Marker + "\n17 4 * * * /usr/bin/keyrotate\n",
		hasTab: true,
	}
	i := newTestInstaller(executor)

	require.NoError(t, i.Uninstall(context.Background()))

	assert.Equal(t, "0 0 * * * /usr/bin/backup\n", executor.table)
}

func TestUninstallWithoutEntryIsNoop(t *testing.T) {
	executor := &fakeExecutor{
		table:  "0 0 * * * /usr/bin/backup\n",
		hasTab: true,
	}
	i := newTestInstaller(executor)

	require.NoError(t, i.Uninstall(context.Background()))
	assert.Equal(t, "0 0 * * * /usr/bin/backup\n", executor.table)
}

func TestUninstallEmptyCrontab(t *testing.T) {
	i := newTestInstaller(&fakeExecutor{})
	require.NoError(t, i.Uninstall(context.Background()))
}
