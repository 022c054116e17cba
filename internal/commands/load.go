package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/movingwise/reconcile/internal/config"
	"github.com/movingwise/reconcile/internal/isoweek"
	"github.com/movingwise/reconcile/internal/statements"
)

func newLoadCommand() *cobra.Command {
	var configPath string
	var year, week, page, pageSize int
	var filter string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load one page of statement records for an ISO week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if year == 0 {
				year, _ = isoweek.Current(time.Now())
			}
			env, err := newRunEnv(configPath)
			if err != nil {
				return err
			}
			if pageSize == 0 {
				pageSize = env.cfg.Defaults.PageSize
			}
			return runLoad(cmd.Context(), cmd.OutOrStdout(), env, week, year, page, pageSize, filter)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultFileName, "path to reconcile.yaml")
	cmd.Flags().IntVar(&week, "week", 0, "ISO week number (required)")
	_ = cmd.MarkFlagRequired("week")
	cmd.Flags().IntVar(&year, "year", 0, "ISO year (default: current)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "records per page: 10, 20, 50 or 100")
	cmd.Flags().StringVar(&filter, "filter", "", "filter loaded page by keyref or shipper name")

	return cmd
}

func runLoad(ctx context.Context, out io.Writer, env *runEnv, week, year, page, pageSize int, filter string) error {
	svc, err := statements.NewService(env.client, pageSize)
	if err != nil {
		return err
	}

	loaded, err := svc.Load(ctx, week, year, page)
	if err != nil {
		return err
	}

	records := statements.Filter(loaded.Records, filter)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKEYREF\tDATE\tSHIPPER\tINCOME\tEXPENSE\tSTATE")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.KeyRef, rec.Date, rec.ShipperName,
			rec.Income.StringFixed(2), rec.Expense.StringFixed(2), rec.State)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if filter != "" {
		fmt.Fprintf(out, "\n%d of %d records on this page match %q (page-scoped filter)\n",
			len(records), len(loaded.Records), filter)
	}
	fmt.Fprintf(out, "\nPage %d of %d (%d records total)\n", page, loaded.TotalPages(), loaded.TotalCount)

	if s := loaded.Summary; s != nil {
		fmt.Fprintf(out, "Week %d summary: income %s, expense %s, net %s across %d records\n",
			s.Week, s.TotalIncome.StringFixed(2), s.TotalExpense.StringFixed(2),
			s.NetAmount.StringFixed(2), s.TotalRecords)
		for state, count := range s.StateBreakdown {
			fmt.Fprintf(out, "  %s: %d\n", state, count)
		}
	}
	return nil
}
