package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
	"github.com/systmms/keyrotate/cmd/keyrotate/commands"
	"github.com/systmms/keyrotate/internal/config"
	kerrors "github.com/systmms/keyrotate/internal/errors"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	code := run()
	memguard.Purge()
	os.Exit(code)
}

func run() int {
	cfg := &config.Config{}

	rootCmd := commands.NewRootCommand(cfg, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	rootCmd.AddCommand(
		commands.NewInstallCronCommand(cfg),
		commands.NewHistoryCommand(cfg),
	)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.SetVersionTemplate("keyrotate {{.Version}}\nLicense: MIT\n")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return kerrors.UsageError{Err: err}
	})

	err := rootCmd.Execute()
	if cfg.Logger != nil {
		defer cfg.Logger.Close()
	}
	if err == nil {
		return exitOK
	}

	var usageErr kerrors.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'keyrotate --help' for usage.\n")
		return exitUsage
	}

	if cfg.Logger != nil {
		cfg.Logger.Error("%v", err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitFailure
}
