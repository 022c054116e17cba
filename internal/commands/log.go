package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/movingwise/reconcile/internal/actionlog"
	"github.com/movingwise/reconcile/internal/config"
)

func newLogCommand() *cobra.Command {
	var configPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent entries from the local action log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithEnv(configPath)
			if err != nil {
				return err
			}
			return runLog(cmd.OutOrStdout(), cfg.Log.ActionsDir, limit)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultFileName, "path to reconcile.yaml")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show, newest last")

	return cmd
}

func runLog(out io.Writer, dir string, limit int) error {
	entries, err := actionlog.Read(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No actions logged yet")
		return nil
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tRECORD\tDETAIL\tOUTCOME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			e.Timestamp.Format(time.RFC3339), e.Action, e.RecordID, e.Detail, e.Outcome)
	}
	return tw.Flush()
}
