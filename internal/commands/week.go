package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/movingwise/reconcile/internal/isoweek"
)

func newWeekCommand() *cobra.Command {
	var year int
	var week int

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the calendar range of an ISO week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWeek(cmd.OutOrStdout(), year, week)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "ISO year (default: current)")
	cmd.Flags().IntVar(&week, "week", 0, "ISO week number (default: current)")

	return cmd
}

func runWeek(out io.Writer, year, week int) error {
	if year == 0 || week == 0 {
		curYear, curWeek := isoweek.Current(time.Now())
		if year == 0 {
			year = curYear
		}
		if week == 0 {
			week = curWeek
		}
	}

	start, end, err := isoweek.Range(year, week)
	if err != nil {
		return err
	}

	startStr, endStr := isoweek.FormatRange(start, end)
	fmt.Fprintf(out, "Week %d of %d: %s .. %s\n", week, year, startStr, endStr)
	return nil
}
