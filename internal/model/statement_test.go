package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{"Exists", StateExists, false},
		{"Not_exists", StateNotExists, false},
		{"Processed", StateProcessed, false},
		{"", StateUnknown, true},
		{"exists", StateUnknown, true},
		{"Deleted", StateUnknown, true},
	}
	for _, tt := range tests {
		got, err := ParseState(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseState(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseState(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestStateString_Unknown(t *testing.T) {
	assert.Equal(t, "Unknown", StateUnknown.String())
	assert.Equal(t, "Processed", StateProcessed.String())
}

func TestStatementRecord_DecodeMissingState(t *testing.T) {
	// The backend may omit state entirely; that must decode to Unknown.
	raw := `{"id": 7, "keyref": "K-100", "date": "2025-07-21", "week": 30, "income": "120.50", "expense": "0.00"}`

	var rec StatementRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	require.NoError(t, rec.Validate())

	assert.Equal(t, StateUnknown, rec.State)
	assert.False(t, rec.State.Valid())
	assert.True(t, rec.Income.Equal(dec("120.50")))
	assert.True(t, rec.Expense.IsZero())
}

func TestStatementRecord_ValidateRejectsNegative(t *testing.T) {
	rec := StatementRecord{ID: 3, KeyRef: "K-3", Income: dec("-1.00")}
	err := rec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative income")
}

func TestStatementRecord_ValidateRejectsBogusState(t *testing.T) {
	rec := StatementRecord{ID: 4, KeyRef: "K-4", State: State("Archived")}
	err := rec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown state")
}

func TestParseAction(t *testing.T) {
	for _, v := range []string{"auto", "overwrite", "add"} {
		a, err := ParseAction(v)
		require.NoError(t, err)
		assert.Equal(t, Action(v), a)
	}
	_, err := ParseAction("merge")
	assert.Error(t, err)
}
