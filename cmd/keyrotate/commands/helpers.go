package commands

import (
	"github.com/spf13/cobra"
	kerrors "github.com/systmms/keyrotate/internal/errors"
)

// noArgs rejects positional arguments, marked so the entry point can map
// the failure to the usage exit code.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return kerrors.UsageError{Err: err}
	}
	return nil
}
