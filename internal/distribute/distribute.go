// Package distribute applies a verified statement's amounts onto its
// matched orders. The client only previews the split; the backend owns the
// authoritative computation, including the semantics of the "auto" action.
package distribute

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/movingwise/reconcile/internal/model"
)

// ErrNoMatches rejects a distribution for a record without matched orders.
var ErrNoMatches = errors.New("distribute: statement record has no matching orders")

// Preview is the client-side projection of a distribution: an equal split
// of the statement's income and expense across all matched orders. The
// backend's actual algorithm for action "auto" may differ; this is shown to
// the user as a preview, never as a result.
type Preview struct {
	RecordID        int64
	Orders          int
	PerOrderIncome  decimal.Decimal
	PerOrderExpense decimal.Decimal
	// OrdersWithExistingAmounts lists matched orders already carrying a
	// non-zero income or expense. Non-empty drives a confirmation warning
	// (amounts may be overwritten); it never blocks the distribution.
	OrdersWithExistingAmounts []string
}

// NewPreview computes the equal-split preview for one verification item.
// Amounts are rendered at two decimal places, so 300.00 over 3 orders is
// exactly 100.00 per order.
func NewPreview(item *model.VerificationItem) (*Preview, error) {
	if item == nil || !item.HasMatches || item.MatchingOrdersCount == 0 {
		return nil, ErrNoMatches
	}

	count := decimal.NewFromInt(int64(item.MatchingOrdersCount))
	p := &Preview{
		RecordID:        item.StatementRecordID,
		Orders:          item.MatchingOrdersCount,
		PerOrderIncome:  item.StatementIncome.DivRound(count, 2),
		PerOrderExpense: item.StatementExpense.DivRound(count, 2),
	}
	for _, order := range item.MatchingOrders {
		if !order.Income.IsZero() || !order.Expense.IsZero() {
			p.OrdersWithExistingAmounts = append(p.OrdersWithExistingAmounts, order.OrderKey)
		}
	}
	return p, nil
}

// NeedsOverwriteWarning reports whether the advisory confirmation gate
// applies.
func (p *Preview) NeedsOverwriteWarning() bool {
	return len(p.OrdersWithExistingAmounts) > 0
}

// OrderAPI is the slice of the backend client distribution needs.
type OrderAPI interface {
	ApplyToOrders(ctx context.Context, id int64, action model.Action, orderIDs []string) (*model.ApplyToOrdersResponse, error)
}

// Apply performs the distribution on the backend. orderIDs narrows it to a
// subset of the matched orders; nil means all.
func Apply(ctx context.Context, backend OrderAPI, recordID int64, action model.Action, orderIDs []string) (*model.ApplyToOrdersResponse, error) {
	return backend.ApplyToOrders(ctx, recordID, action, orderIDs)
}

// Outcome classifies a distribution response for the summary banner.
type Outcome string

const (
	// OutcomeSuccess: every order updated, none failed.
	OutcomeSuccess Outcome = "success"
	// OutcomeWarning: at least one order failed.
	OutcomeWarning Outcome = "warning"
	// OutcomeNothing: nothing needed updating (all skipped).
	OutcomeNothing Outcome = "nothing"
	// OutcomeUnknown: an empty or inconsistent response.
	OutcomeUnknown Outcome = "unknown"
)

// Classify maps a response onto the banner outcome.
func Classify(resp *model.ApplyToOrdersResponse) Outcome {
	switch {
	case resp == nil:
		return OutcomeUnknown
	case resp.OrdersFailed > 0:
		return OutcomeWarning
	case resp.OrdersUpdated > 0:
		return OutcomeSuccess
	case resp.OrdersSkipped > 0:
		return OutcomeNothing
	default:
		return OutcomeUnknown
	}
}
