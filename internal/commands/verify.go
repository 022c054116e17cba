package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/movingwise/reconcile/internal/config"
	"github.com/movingwise/reconcile/internal/verify"
)

func newVerifyCommand() *cobra.Command {
	var configPath string
	var apply bool
	var selectIDs []int64

	cmd := &cobra.Command{
		Use:   "verify <record-id>...",
		Short: "Verify statement records against company orders",
		Long: "Ask the backend to match each record against company orders and\n" +
			"suggest a next state. With --apply the suggested states are committed\n" +
			"for the selected records (default: all verified records).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseRecordIDs(args)
			if err != nil {
				return err
			}
			env, err := newRunEnv(configPath)
			if err != nil {
				return err
			}
			return runVerify(cmd.Context(), cmd.OutOrStdout(), env, ids, apply, selectIDs)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultFileName, "path to reconcile.yaml")
	cmd.Flags().BoolVar(&apply, "apply", false, "commit the suggested states after verification")
	cmd.Flags().Int64SliceVar(&selectIDs, "select", nil, "record ids to apply (default: all verified)")

	return cmd
}

func parseRecordIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid record id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runVerify(ctx context.Context, out io.Writer, env *runEnv, ids []int64, apply bool, selectIDs []int64) error {
	session := verify.NewSession(env.client, env.logger)
	if err := session.Run(ctx, ids); err != nil {
		return err
	}

	if missing := session.MissingIDs(); len(missing) > 0 {
		fmt.Fprintf(out, "warning: %d requested record(s) were not returned: %s\n\n",
			len(missing), joinIDs(missing))
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKEYREF\tCURRENT\tORDERS\tINCOME DIFF\tEXPENSE DIFF\tSUGGESTED")
	for _, item := range session.Items() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			item.StatementRecordID, item.KeyRef, item.CurrentState,
			item.MatchingOrdersCount,
			item.IncomeDifference.StringFixed(2), item.ExpenseDifference.StringFixed(2),
			item.SuggestedState)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !apply {
		return nil
	}

	if len(selectIDs) == 0 {
		session.ToggleAll()
	} else {
		for _, id := range selectIDs {
			if err := session.Select(id); err != nil {
				return err
			}
		}
	}

	resp, err := session.Apply(ctx)
	if err != nil {
		env.logAction(session.ID(), "bulk-apply", 0, fmt.Sprintf("records=%d", session.SelectedCount()), "error")
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRESULT\tPREVIOUS\tNEW\tERROR")
	for _, res := range resp.Results {
		status := "ok"
		if !res.Success {
			status = "FAILED"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			res.StatementRecordID, status, res.PreviousState, res.NewState, res.ErrorMessage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	outcome := "success"
	if resp.Failed > 0 {
		outcome = "warning"
	}
	env.logAction(session.ID(), "bulk-apply", 0,
		fmt.Sprintf("updated=%d failed=%d", resp.Updated, resp.Failed), outcome)

	fmt.Fprintf(out, "\n%d updated, %d failed\n", resp.Updated, resp.Failed)
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
