package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/keyrotate/internal/config"
	"github.com/systmms/keyrotate/internal/credstore"
	"github.com/systmms/keyrotate/internal/identity"
	"github.com/systmms/keyrotate/internal/logging"
	"github.com/systmms/keyrotate/internal/rotation"
	"github.com/systmms/keyrotate/internal/rotation/metrics"
	"github.com/systmms/keyrotate/internal/rotation/storage"
	"github.com/systmms/keyrotate/pkg/keys"
)

// NewRootCommand builds the root command. Rotation is the root action:
// running keyrotate with no arguments rotates the default profile.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	var (
		configFile  string
		noColor     bool
		debug       bool
		metricsFile string
		profileFlag string
		profileList string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "keyrotate",
		Short: "Rotate AWS IAM access keys in place",
		Long: `keyrotate replaces the access key stored in one or more credential
profiles with a freshly minted one, verifies the new key works, then
deletes the old key. Designed to run unattended from cron.`,
		Version: version,
		Args:    noArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.New(debug, noColor)

			cfg.Path = configFile
			cfg.ExplicitPath = cmd.Flags().Changed("config")
			cfg.Logger = logger
			cfg.MetricsFile = metricsFile
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			raw := profileFlag
			if profileList != "" {
				if raw != "" {
					raw += ","
				}
				raw += profileList
			}
			profiles := rotation.ParseProfileSet(raw)

			store, err := credstore.New(cfg.Definition.Store, cfg.Definition.CredentialsFile)
			if err != nil {
				return err
			}

			return runRotation(cmd.Context(), cfg, store, profiles, force)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Config file path")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile(s) to rotate (comma-separated)")
	cmd.Flags().StringVar(&profileList, "profiles", "", "Additional profiles to rotate (comma-separated)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip consistency and key-count checks")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path after the run")
	cmd.Flags().BoolP("version", "v", false, "Show version information")

	return cmd
}

// runRotation wires the orchestrator, records the outcome, and persists the
// run. History and metrics failures never mask the rotation result.
func runRotation(ctx context.Context, cfg *config.Config, store credstore.Store, profiles rotation.ProfileSet, force bool) error {
	factory := func(ctx context.Context, active keys.AccessKey) (identity.Provider, error) {
		return identity.New(active, cfg.Definition.Region, cfg.Logger), nil
	}

	orchestrator := rotation.New(store, factory, cfg.Logger,
		rotation.WithVerifyBudget(
			cfg.Definition.Verify.Attempts,
			time.Duration(cfg.Definition.Verify.DelaySeconds)*time.Second,
		),
	)

	recorder := metrics.NewRecorder()
	recorder.RecordStarted()

	cfg.Logger.Info("Rotating access key for profile(s): %s", profiles)
	res, rotErr := orchestrator.Rotate(ctx, profiles, force)

	recorder.RecordResult(res)
	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			cfg.Logger.Warn("Failed to write metrics file: %v", err)
		}
	}

	runStore := storage.New(storage.DefaultDir())
	if err := runStore.SaveRun(res); err != nil {
		cfg.Logger.Warn("Failed to record run history: %v", err)
	}

	if rotErr != nil {
		return rotErr
	}

	cfg.Logger.Info("Rotation complete: %s replaced by %s",
		keys.Mask(res.OldKeyID), keys.Mask(res.NewKeyID))
	return nil
}
