package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// State is the reconciliation-progress marker of a statement record.
type State string

const (
	// StateUnknown is the fallback when the backend omits the state field.
	// It is never a legal target for a state transition.
	StateUnknown   State = ""
	StateExists    State = "Exists"
	StateNotExists State = "Not_exists"
	StateProcessed State = "Processed"
)

// Valid reports whether s is one of the three settable states.
func (s State) Valid() bool {
	switch s {
	case StateExists, StateNotExists, StateProcessed:
		return true
	}
	return false
}

func (s State) String() string {
	if s == StateUnknown {
		return "Unknown"
	}
	return string(s)
}

// ParseState converts user input into a settable State.
func ParseState(v string) (State, error) {
	s := State(v)
	if !s.Valid() {
		return StateUnknown, fmt.Errorf("invalid state %q (want Exists, Not_exists or Processed)", v)
	}
	return s, nil
}

// Action selects how a statement's amounts are distributed across matched orders.
type Action string

const (
	ActionAuto      Action = "auto"
	ActionOverwrite Action = "overwrite"
	ActionAdd       Action = "add"
)

// Valid reports whether a is a known distribution action.
func (a Action) Valid() bool {
	switch a {
	case ActionAuto, ActionOverwrite, ActionAdd:
		return true
	}
	return false
}

// ParseAction converts user input into an Action.
func ParseAction(v string) (Action, error) {
	a := Action(v)
	if !a.Valid() {
		return "", fmt.Errorf("invalid action %q (want auto, overwrite or add)", v)
	}
	return a, nil
}

// StatementRecord is one imported bank-statement line pending reconciliation.
// Income and expense are separate non-negative amounts; they are never
// collapsed into a signed net without explicit subtraction.
type StatementRecord struct {
	ID          int64           `json:"id"`
	KeyRef      string          `json:"keyref"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Week        int             `json:"week"`
	ShipperName string          `json:"shipper_name,omitempty"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	State       State           `json:"state,omitempty"`
}

// Validate checks wire-level invariants after decoding.
func (r StatementRecord) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("statement record: missing id")
	}
	if r.Income.IsNegative() {
		return fmt.Errorf("statement record %d: negative income %s", r.ID, r.Income)
	}
	if r.Expense.IsNegative() {
		return fmt.Errorf("statement record %d: negative expense %s", r.ID, r.Expense)
	}
	if r.State != StateUnknown && !r.State.Valid() {
		return fmt.Errorf("statement record %d: unknown state %q", r.ID, string(r.State))
	}
	return nil
}

// WeekSummary aggregates all records in a week. Server-computed and
// read-only; recomputed by the backend on every fetch.
type WeekSummary struct {
	Week           int             `json:"week"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	TotalRecords   int             `json:"total_records"`
	StateBreakdown map[string]int  `json:"state_breakdown,omitempty"`
}
