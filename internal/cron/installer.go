// Package cron registers a daily keyrotate invocation in the user's
// crontab. The entry carries a marker comment so repeated installs replace
// it instead of stacking duplicates.
package cron

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	kerrors "github.com/systmms/keyrotate/internal/errors"
	"github.com/systmms/keyrotate/internal/logging"
	"github.com/systmms/keyrotate/pkg/exec"
)

// Marker tags the crontab lines owned by keyrotate.
const Marker = "# keyrotate: daily access key rotation"

// Installer edits the user crontab through the crontab(1) command.
type Installer struct {
	executor exec.CommandExecutor
	logger   *logging.Logger

	// pickMinute returns the minute for the new entry. Randomized in
	// production so a fleet does not hit the provider at the same second.
	pickMinute func() int
}

// NewInstaller creates an installer using the real crontab command.
func NewInstaller(executor exec.CommandExecutor, logger *logging.Logger) *Installer {
	return &Installer{
		executor:   executor,
		logger:     logger,
		pickMinute: func() int { return rand.Intn(60) },
	}
}

// Install adds or replaces the keyrotate crontab entry, scheduled daily at
// a random minute within the given hour.
func (i *Installer) Install(ctx context.Context, hour int, binaryPath string) error {
	if hour < 0 || hour > 23 {
		return kerrors.UserError{
			Message:    fmt.Sprintf("Invalid cron hour %d", hour),
			Suggestion: "Pick an hour between 0 and 23",
		}
	}

	current, err := i.readCrontab(ctx)
	if err != nil {
		return err
	}

	minute := i.pickMinute()
	entry := fmt.Sprintf("%d %d * * * %s", minute, hour, binaryPath)
	lines := append(withoutOwnedLines(current), Marker, entry)

	if err := i.writeCrontab(ctx, lines); err != nil {
		return err
	}

	i.logger.Info("Installed crontab entry: daily at %02d:%02d", hour, minute)
	return nil
}

// Uninstall removes the keyrotate crontab entry if present.
func (i *Installer) Uninstall(ctx context.Context) error {
	current, err := i.readCrontab(ctx)
	if err != nil {
		return err
	}

	remaining := withoutOwnedLines(current)
	if len(remaining) == len(current) {
		i.logger.Info("No crontab entry to remove")
		return nil
	}

	if err := i.writeCrontab(ctx, remaining); err != nil {
		return err
	}

	i.logger.Info("Removed crontab entry")
	return nil
}

// readCrontab returns the current crontab lines. A missing crontab is an
// empty one: crontab -l exits non-zero with "no crontab for <user>".
func (i *Installer) readCrontab(ctx context.Context) ([]string, error) {
	stdout, stderr, err := i.executor.Execute(ctx, "crontab", "-l")
	if err != nil {
		if strings.Contains(string(stderr), "no crontab") {
			return nil, nil
		}
		return nil, kerrors.UserError{
			Message:    "Failed to read the current crontab",
			Suggestion: "Check that crontab is installed and usable by this user",
			Details:    strings.TrimSpace(string(stderr)),
			Err:        err,
		}
	}

	text := strings.TrimRight(string(stdout), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (i *Installer) writeCrontab(ctx context.Context, lines []string) error {
	var table string
	if len(lines) > 0 {
		table = strings.Join(lines, "\n") + "\n"
	}

	_, stderr, err := i.executor.ExecuteInput(ctx, []byte(table), "crontab", "-")
	if err != nil {
		return kerrors.UserError{
			Message:    "Failed to write the crontab",
			Suggestion: "Check that crontab is installed and usable by this user",
			Details:    strings.TrimSpace(string(stderr)),
			Err:        err,
		}
	}
	return nil
}

// withoutOwnedLines drops the marker comment and the entry line following
// it, leaving everything else untouched.
func withoutOwnedLines(lines []string) []string {
	var kept []string
	skipNext := false
	for _, line := range lines {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.TrimSpace(line) == Marker {
			skipNext = true
			continue
		}
		kept = append(kept, line)
	}
	return kept
}
