package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/keyrotate/internal/config"
	"github.com/systmms/keyrotate/internal/rotation"
	"github.com/systmms/keyrotate/internal/rotation/storage"
	"github.com/systmms/keyrotate/pkg/keys"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(cfg *config.Config) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past rotation runs",
		Long: `Display the outcome of past rotation runs, newest first.

Examples:
  # Show the most recent runs
  keyrotate history

  # Show the last 5 runs as JSON
  keyrotate history --limit 5 --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(storage.DefaultDir()).ListRuns(limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(runs)
			}

			return printRunTable(runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func printRunTable(runs []rotation.Result) error {
	if len(runs) == 0 {
		fmt.Println("No rotation runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "STARTED\tSTATUS\tPROFILES\tOLD KEY\tNEW KEY\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Status,
			rotation.ProfileSet(run.Profiles),
			maskOrDash(run.OldKeyID),
			maskOrDash(run.NewKeyID),
			formatDuration(run.FinishedAt.Sub(run.StartedAt)),
		)
	}

	return nil
}

func maskOrDash(id string) string {
	if id == "" {
		return "-"
	}
	return keys.Mask(id)
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}
