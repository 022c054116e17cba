package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/movingwise/reconcile/internal/config"
	"github.com/movingwise/reconcile/internal/model"
	"github.com/movingwise/reconcile/internal/statements"
)

func newSetStateCommand() *cobra.Command {
	var configPath string
	var week, year int

	cmd := &cobra.Command{
		Use:   "set-state <record-id> <state>",
		Short: "Transition one statement record to a new state",
		Long: "Transition one statement record to Exists, Not_exists or Processed.\n" +
			"With --week and --year the record's page is loaded first, so setting\n" +
			"the state it already has is detected locally and skipped.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}
			newState, err := model.ParseState(args[1])
			if err != nil {
				return err
			}
			env, err := newRunEnv(configPath)
			if err != nil {
				return err
			}
			return runSetState(cmd.Context(), cmd.OutOrStdout(), env, recordID, newState, week, year)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultFileName, "path to reconcile.yaml")
	cmd.Flags().IntVar(&week, "week", 0, "ISO week of the record, enables the local no-op check")
	cmd.Flags().IntVar(&year, "year", 0, "ISO year of the record")

	return cmd
}

func runSetState(ctx context.Context, out io.Writer, env *runEnv, recordID int64, newState model.State, week, year int) error {
	previous := model.StateUnknown

	if week != 0 && year != 0 {
		svc, err := statements.NewService(env.client, env.cfg.Defaults.PageSize)
		if err != nil {
			return err
		}
		page, err := findRecordPage(ctx, svc, week, year, recordID)
		if err != nil {
			return err
		}
		rec, _ := page.Record(recordID)
		previous = rec.State
		if previous == newState {
			fmt.Fprintf(out, "Record %d already has state %s, nothing to do\n", recordID, newState)
			return nil
		}
		if err := svc.SetState(ctx, page, recordID, newState); err != nil {
			env.logAction("", "set-state", recordID, transitionDetail(previous, newState), "error")
			return err
		}
	} else {
		// Without the week there is no loaded page, so the no-op guard does
		// not apply and the previous state stays Unknown in the log.
		if _, err := env.client.UpdateState(ctx, recordID, newState); err != nil {
			env.logAction("", "set-state", recordID, transitionDetail(previous, newState), "error")
			return err
		}
	}

	env.logAction("", "set-state", recordID, transitionDetail(previous, newState), "success")
	fmt.Fprintf(out, "Record %d is now %s\n", recordID, newState)
	return nil
}

// findRecordPage walks the week's pages until it finds the record.
func findRecordPage(ctx context.Context, svc *statements.Service, week, year int, recordID int64) (*statements.Page, error) {
	for pageNum := 1; ; pageNum++ {
		page, err := svc.Load(ctx, week, year, pageNum)
		if err != nil {
			return nil, err
		}
		if _, ok := page.Record(recordID); ok {
			return page, nil
		}
		if pageNum >= page.TotalPages() {
			return nil, fmt.Errorf("record %d not found in week %d/%d", recordID, week, year)
		}
	}
}

func transitionDetail(from, to model.State) string {
	return fmt.Sprintf("%s -> %s", from, to)
}
