package model

import "github.com/shopspring/decimal"

// MatchingOrder is a read-only snapshot of a company order matched to a
// statement line. It does not track order changes made elsewhere.
type MatchingOrder struct {
	OrderKey string          `json:"order_key"`
	KeyRef   string          `json:"key_ref"`
	Date     string          `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Status   string          `json:"status"`
}

// VerificationItem is the server-computed comparison of one statement line
// against its matched orders. Differences are signed: statement minus orders.
// SuggestedState is an opaque server heuristic, passed through untouched.
type VerificationItem struct {
	StatementRecordID   int64           `json:"statement_record_id"`
	KeyRef              string          `json:"keyref"`
	CurrentState        State           `json:"current_state,omitempty"`
	StatementIncome     decimal.Decimal `json:"statement_income"`
	StatementExpense    decimal.Decimal `json:"statement_expense"`
	HasMatches          bool            `json:"has_matches"`
	MatchingOrdersCount int             `json:"matching_orders_count"`
	MatchingOrders      []MatchingOrder `json:"matching_orders"`
	TotalOrdersIncome   decimal.Decimal `json:"total_orders_income"`
	TotalOrdersExpense  decimal.Decimal `json:"total_orders_expense"`
	IncomeDifference    decimal.Decimal `json:"income_difference"`
	ExpenseDifference   decimal.Decimal `json:"expense_difference"`
	SuggestedState      State           `json:"suggested_state"`
}

// VerifyResponse is the result of verifying a set of statement records.
// MissingIDs lists requested records the backend did not return; a non-empty
// list is a warning, not a failure.
type VerifyResponse struct {
	Verifications         []VerificationItem `json:"verifications"`
	RecordsWithMatches    int                `json:"records_with_matches"`
	RecordsWithoutMatches int                `json:"records_without_matches"`
	MissingIDs            []int64            `json:"missing_ids"`
}

// StateUpdate is one entry in a bulk state-update request.
type StateUpdate struct {
	StatementRecordID int64 `json:"statement_record_id"`
	NewState          State `json:"new_state"`
}

// BulkUpdateResult records the outcome for one record in a bulk update.
type BulkUpdateResult struct {
	StatementRecordID int64  `json:"statement_record_id"`
	Success           bool   `json:"success"`
	PreviousState     State  `json:"previous_state,omitempty"`
	NewState          State  `json:"new_state,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`
}

// BulkUpdateResponse is the per-record outcome table of a bulk state update.
// Individual failures never abort the batch.
type BulkUpdateResponse struct {
	Results []BulkUpdateResult `json:"results"`
	Updated int                `json:"updated"`
	Failed  int                `json:"failed"`
}

// OrderResult records the effect of a distribution on one matched order.
type OrderResult struct {
	OrderKey        string          `json:"order_key"`
	Success         bool            `json:"success"`
	PreviousIncome  decimal.Decimal `json:"previous_income"`
	PreviousExpense decimal.Decimal `json:"previous_expense"`
	NewIncome       decimal.Decimal `json:"new_income"`
	NewExpense      decimal.Decimal `json:"new_expense"`
	ActionTaken     string          `json:"action_taken"`
	ErrorMessage    string          `json:"error_message,omitempty"`
}

// ApplyToOrdersResponse is the per-order outcome of distributing a
// statement's amounts across its matched orders.
type ApplyToOrdersResponse struct {
	Results       []OrderResult `json:"results"`
	OrdersUpdated int           `json:"orders_updated"`
	OrdersFailed  int           `json:"orders_failed"`
	OrdersSkipped int           `json:"orders_skipped"`
}
