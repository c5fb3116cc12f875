package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/keyrotate/internal/config"
	"github.com/systmms/keyrotate/internal/cron"
	kerrors "github.com/systmms/keyrotate/internal/errors"
	"github.com/systmms/keyrotate/pkg/exec"
)

// NewInstallCronCommand creates the install-cron command, the packaging
// post-install step that schedules the daily unattended rotation.
func NewInstallCronCommand(cfg *config.Config) *cobra.Command {
	var (
		hour      int
		uninstall bool
	)

	cmd := &cobra.Command{
		Use:   "install-cron",
		Short: "Register a daily rotation in the user crontab",
		Long: `Add a crontab entry that runs keyrotate once a day at a random minute
within the configured hour. Reinstalling replaces the existing entry.

Examples:
  # Install with the configured (or default) hour
  keyrotate install-cron

  # Rotate at 02:xx instead
  keyrotate install-cron --hour 2

  # Remove the entry
  keyrotate install-cron --uninstall`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			installer := cron.NewInstaller(exec.DefaultExecutor(), cfg.Logger)

			if uninstall {
				return installer.Uninstall(cmd.Context())
			}

			if !cmd.Flags().Changed("hour") {
				hour = cfg.Definition.Cron.Hour
			}

			binary, err := os.Executable()
			if err != nil {
				return kerrors.UserError{
					Message:    "Failed to locate the keyrotate binary",
					Details:    err.Error(),
					Suggestion: "Install keyrotate to a stable path before registering cron",
					Err:        err,
				}
			}

			return installer.Install(cmd.Context(), hour, binary)
		},
	}

	cmd.Flags().IntVar(&hour, "hour", 0, "Hour of day for the daily rotation (0-23)")
	cmd.Flags().BoolVar(&uninstall, "uninstall", false, "Remove the keyrotate crontab entry")

	return cmd
}
