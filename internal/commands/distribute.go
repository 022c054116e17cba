package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/movingwise/reconcile/internal/config"
	"github.com/movingwise/reconcile/internal/distribute"
	"github.com/movingwise/reconcile/internal/model"
	"github.com/movingwise/reconcile/internal/verify"
)

func newDistributeCommand() *cobra.Command {
	var configPath string
	var actionName string
	var orderIDs []string
	var yes bool

	cmd := &cobra.Command{
		Use:   "distribute <record-id>",
		Short: "Distribute a statement's amounts across its matched orders",
		Long: "Verify one statement record, preview the equal split of its income\n" +
			"and expense across the matched orders, and apply the distribution.\n" +
			"When any matched order already carries amounts, --yes is required\n" +
			"because those values may be overwritten.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}
			action, err := model.ParseAction(actionName)
			if err != nil {
				return err
			}
			env, err := newRunEnv(configPath)
			if err != nil {
				return err
			}
			return runDistribute(cmd.Context(), cmd.OutOrStdout(), env, recordID, action, orderIDs, yes)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultFileName, "path to reconcile.yaml")
	cmd.Flags().StringVar(&actionName, "action", "", "allocation strategy: auto, overwrite or add (required)")
	_ = cmd.MarkFlagRequired("action")
	cmd.Flags().StringSliceVar(&orderIDs, "orders", nil, "restrict to these order keys (default: all matches)")
	cmd.Flags().BoolVar(&yes, "yes", false, "proceed even when matched orders already carry amounts")

	return cmd
}

func runDistribute(ctx context.Context, out io.Writer, env *runEnv, recordID int64, action model.Action, orderIDs []string, yes bool) error {
	session := verify.NewSession(env.client, env.logger)
	if err := session.Run(ctx, []int64{recordID}); err != nil {
		return err
	}

	item, ok := session.Item(recordID)
	if !ok {
		return fmt.Errorf("record %d was not returned by verification", recordID)
	}
	if !session.CanDistribute(recordID) {
		return distribute.ErrNoMatches
	}

	preview, err := distribute.NewPreview(item)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Statement %d (%s): income %s, expense %s over %d matched order(s)\n",
		recordID, item.KeyRef,
		item.StatementIncome.StringFixed(2), item.StatementExpense.StringFixed(2),
		preview.Orders)
	fmt.Fprintf(out, "Equal-split preview: %s income, %s expense per order (server result may differ for action auto)\n",
		preview.PerOrderIncome.StringFixed(2), preview.PerOrderExpense.StringFixed(2))

	if preview.NeedsOverwriteWarning() && !yes {
		return fmt.Errorf("orders %v already carry amounts that may be overwritten; re-run with --yes to proceed",
			preview.OrdersWithExistingAmounts)
	}

	resp, err := distribute.Apply(ctx, env.client, recordID, action, orderIDs)
	if err != nil {
		env.logAction(session.ID(), "distribute", recordID,
			fmt.Sprintf("action=%s orders=%d", action, preview.Orders), "error")
		return err
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tRESULT\tINCOME\tEXPENSE\tACTION\tERROR")
	for _, res := range resp.Results {
		status := "ok"
		if !res.Success {
			status = "FAILED"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s -> %s\t%s -> %s\t%s\t%s\n",
			res.OrderKey, status,
			res.PreviousIncome.StringFixed(2), res.NewIncome.StringFixed(2),
			res.PreviousExpense.StringFixed(2), res.NewExpense.StringFixed(2),
			res.ActionTaken, res.ErrorMessage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	outcome := distribute.Classify(resp)
	switch outcome {
	case distribute.OutcomeSuccess:
		fmt.Fprintf(out, "\nAll %d order(s) updated\n", resp.OrdersUpdated)
	case distribute.OutcomeWarning:
		fmt.Fprintf(out, "\n%d order(s) updated, %d failed\n", resp.OrdersUpdated, resp.OrdersFailed)
	case distribute.OutcomeNothing:
		fmt.Fprintf(out, "\nNothing needed updating (%d order(s) skipped)\n", resp.OrdersSkipped)
	default:
		fmt.Fprintln(out, "\nNo orders were affected")
	}

	env.logAction(session.ID(), "distribute", recordID,
		fmt.Sprintf("action=%s orders=%d", action, preview.Orders), string(outcome))
	return nil
}
