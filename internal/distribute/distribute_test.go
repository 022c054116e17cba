package distribute

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movingwise/reconcile/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewPreview_EqualSplit(t *testing.T) {
	item := &model.VerificationItem{
		StatementRecordID:   10,
		StatementIncome:     dec("300.00"),
		StatementExpense:    dec("0.00"),
		HasMatches:          true,
		MatchingOrdersCount: 3,
		MatchingOrders: []model.MatchingOrder{
			{OrderKey: "ORD-1"},
			{OrderKey: "ORD-2"},
			{OrderKey: "ORD-3"},
		},
	}

	p, err := NewPreview(item)
	require.NoError(t, err)

	assert.Equal(t, 3, p.Orders)
	assert.Equal(t, "100.00", p.PerOrderIncome.StringFixed(2), "no rounding drift")
	assert.Equal(t, "0.00", p.PerOrderExpense.StringFixed(2))
	assert.False(t, p.NeedsOverwriteWarning())
}

func TestNewPreview_RoundsToTwoPlaces(t *testing.T) {
	item := &model.VerificationItem{
		StatementRecordID:   11,
		StatementIncome:     dec("100.00"),
		StatementExpense:    dec("50.00"),
		HasMatches:          true,
		MatchingOrdersCount: 3,
	}

	p, err := NewPreview(item)
	require.NoError(t, err)
	assert.Equal(t, "33.33", p.PerOrderIncome.StringFixed(2))
	assert.Equal(t, "16.67", p.PerOrderExpense.StringFixed(2))
}

func TestNewPreview_NoMatches(t *testing.T) {
	_, err := NewPreview(nil)
	assert.ErrorIs(t, err, ErrNoMatches)

	_, err = NewPreview(&model.VerificationItem{HasMatches: false})
	assert.ErrorIs(t, err, ErrNoMatches)

	_, err = NewPreview(&model.VerificationItem{HasMatches: true, MatchingOrdersCount: 0})
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestNewPreview_FlagsExistingAmounts(t *testing.T) {
	item := &model.VerificationItem{
		StatementRecordID:   12,
		StatementIncome:     dec("150.00"),
		HasMatches:          true,
		MatchingOrdersCount: 2,
		MatchingOrders: []model.MatchingOrder{
			{OrderKey: "ORD-A", Income: dec("50.00")},
			{OrderKey: "ORD-B"},
		},
	}

	p, err := NewPreview(item)
	require.NoError(t, err)
	assert.True(t, p.NeedsOverwriteWarning())
	assert.Equal(t, []string{"ORD-A"}, p.OrdersWithExistingAmounts)
}

type fakeOrderAPI struct {
	lastAction model.Action
	lastOrders []string
	resp       *model.ApplyToOrdersResponse
}

func (f *fakeOrderAPI) ApplyToOrders(_ context.Context, _ int64, action model.Action, orderIDs []string) (*model.ApplyToOrdersResponse, error) {
	f.lastAction = action
	f.lastOrders = orderIDs
	return f.resp, nil
}

// Scenario: action "add" with income 150.00 onto a single matched order
// previously at 50.00 yields new income 200.00.
func TestApply_AddAction(t *testing.T) {
	backend := &fakeOrderAPI{resp: &model.ApplyToOrdersResponse{
		Results: []model.OrderResult{{
			OrderKey:       "ORD-9",
			Success:        true,
			PreviousIncome: dec("50.00"),
			NewIncome:      dec("200.00"),
			ActionTaken:    "add",
		}},
		OrdersUpdated: 1,
	}}

	resp, err := Apply(context.Background(), backend, 42, model.ActionAdd, []string{"ORD-9"})
	require.NoError(t, err)

	assert.Equal(t, model.ActionAdd, backend.lastAction)
	assert.Equal(t, []string{"ORD-9"}, backend.lastOrders)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "add", resp.Results[0].ActionTaken)
	assert.True(t, resp.Results[0].NewIncome.Equal(dec("200.00")))
	assert.Equal(t, OutcomeSuccess, Classify(resp))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		resp *model.ApplyToOrdersResponse
		want Outcome
	}{
		{"all updated", &model.ApplyToOrdersResponse{OrdersUpdated: 3}, OutcomeSuccess},
		{"some failed", &model.ApplyToOrdersResponse{OrdersUpdated: 2, OrdersFailed: 1}, OutcomeWarning},
		{"all failed", &model.ApplyToOrdersResponse{OrdersFailed: 2}, OutcomeWarning},
		{"all skipped", &model.ApplyToOrdersResponse{OrdersSkipped: 4}, OutcomeNothing},
		{"empty", &model.ApplyToOrdersResponse{}, OutcomeUnknown},
		{"nil", nil, OutcomeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.resp))
		})
	}
}
