package verify

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movingwise/reconcile/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeVerifyAPI struct {
	verifyCalls int
	bulkCalls   int
	lastUpdates []model.StateUpdate

	verifyResp *model.VerifyResponse
	verifyErr  error
	bulkResp   *model.BulkUpdateResponse
	bulkErr    error
}

func (f *fakeVerifyAPI) Verify(_ context.Context, _ []int64) (*model.VerifyResponse, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResp, nil
}

func (f *fakeVerifyAPI) BulkUpdateState(_ context.Context, updates []model.StateUpdate) (*model.BulkUpdateResponse, error) {
	f.bulkCalls++
	f.lastUpdates = updates
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	if f.bulkResp != nil {
		return f.bulkResp, nil
	}
	results := make([]model.BulkUpdateResult, len(updates))
	for i, u := range updates {
		results[i] = model.BulkUpdateResult{
			StatementRecordID: u.StatementRecordID,
			Success:           true,
			NewState:          u.NewState,
		}
	}
	return &model.BulkUpdateResponse{Results: results, Updated: len(updates)}, nil
}

func threeItemResponse() *model.VerifyResponse {
	return &model.VerifyResponse{
		Verifications: []model.VerificationItem{
			{
				StatementRecordID:   1,
				KeyRef:              "K-1",
				CurrentState:        model.StateExists,
				StatementIncome:     dec("300.00"),
				HasMatches:          true,
				MatchingOrdersCount: 3,
				SuggestedState:      model.StateProcessed,
			},
			{
				StatementRecordID:   2,
				KeyRef:              "K-2",
				CurrentState:        model.StateNotExists,
				StatementExpense:    dec("80.00"),
				HasMatches:          true,
				MatchingOrdersCount: 1,
				SuggestedState:      model.StateExists,
			},
			{
				StatementRecordID:   3,
				KeyRef:              "K-3",
				CurrentState:        model.StateNotExists,
				HasMatches:          false,
				MatchingOrdersCount: 0,
				SuggestedState:      model.StateNotExists,
			},
		},
		RecordsWithMatches:    2,
		RecordsWithoutMatches: 1,
	}
}

func reviewingSession(t *testing.T, backend *fakeVerifyAPI) *Session {
	t.Helper()
	if backend.verifyResp == nil {
		backend.verifyResp = threeItemResponse()
	}
	s := NewSession(backend, nil)
	require.NoError(t, s.Run(context.Background(), []int64{1, 2, 3}))
	require.Equal(t, PhaseReviewing, s.Phase())
	return s
}

func TestRun_EmptySelection(t *testing.T) {
	backend := &fakeVerifyAPI{}
	s := NewSession(backend, nil)

	err := s.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Zero(t, backend.verifyCalls)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestRun_TransportFailureEndsSession(t *testing.T) {
	backend := &fakeVerifyAPI{verifyErr: fmt.Errorf("gateway timeout")}
	s := NewSession(backend, nil)

	err := s.Run(context.Background(), []int64{1})
	require.Error(t, err)
	assert.Equal(t, PhaseFailed, s.Phase())

	// Terminal: a second run is rejected.
	err = s.Run(context.Background(), []int64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phase failed")
}

// Scenario: verify 3 records where 2 have matches; all 3 rows are shown and
// distribution is offered only for the 2 with matched orders.
func TestRun_ReviewingState(t *testing.T) {
	backend := &fakeVerifyAPI{}
	s := reviewingSession(t, backend)

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(1), items[0].StatementRecordID, "backend order preserved")
	assert.Equal(t, int64(3), items[2].StatementRecordID)

	withMatches := 0
	for _, item := range items {
		if item.MatchingOrdersCount > 0 {
			withMatches++
		}
	}
	assert.Equal(t, 2, withMatches)

	assert.True(t, s.CanDistribute(1))
	assert.True(t, s.CanDistribute(2))
	assert.False(t, s.CanDistribute(3))
	assert.False(t, s.CanDistribute(99))
	assert.Empty(t, s.MissingIDs())
}

func TestRun_MissingIDsAreWarnings(t *testing.T) {
	resp := threeItemResponse()
	resp.MissingIDs = []int64{7, 9}
	backend := &fakeVerifyAPI{verifyResp: resp}

	s := NewSession(backend, nil)
	require.NoError(t, s.Run(context.Background(), []int64{1, 2, 3, 7, 9}))

	assert.Equal(t, PhaseReviewing, s.Phase(), "missing ids do not fail the run")
	assert.Equal(t, []int64{7, 9}, s.MissingIDs())
}

func TestToggleAll(t *testing.T) {
	s := reviewingSession(t, &fakeVerifyAPI{})

	s.ToggleAll()
	assert.Equal(t, 3, s.SelectedCount(), "first toggle selects all")

	s.ToggleAll()
	assert.Zero(t, s.SelectedCount(), "second toggle deselects all")

	// Partial manual selection: toggle selects ALL (full-select wins).
	require.NoError(t, s.Select(2))
	s.ToggleAll()
	assert.Equal(t, 3, s.SelectedCount())
	assert.True(t, s.IsSelected(1))
	assert.True(t, s.IsSelected(3))
}

func TestSelect_UnknownRecord(t *testing.T) {
	s := reviewingSession(t, &fakeVerifyAPI{})
	err := s.Select(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not part of this verification")
}

func TestApply_EmptySelectionRejectedWithoutNetworkCall(t *testing.T) {
	backend := &fakeVerifyAPI{}
	s := reviewingSession(t, backend)

	_, err := s.Apply(context.Background())
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Zero(t, backend.bulkCalls)
	assert.Equal(t, PhaseReviewing, s.Phase(), "session still reviewable")
}

func TestApply_UsesSuggestedState(t *testing.T) {
	backend := &fakeVerifyAPI{}
	s := reviewingSession(t, backend)

	// Item 1: current Exists, suggested Processed. The payload must carry
	// the suggestion.
	require.NoError(t, s.Select(1))

	resp, err := s.Apply(context.Background())
	require.NoError(t, err)
	require.Len(t, backend.lastUpdates, 1)
	assert.Equal(t, model.StateUpdate{StatementRecordID: 1, NewState: model.StateProcessed}, backend.lastUpdates[0])

	assert.Equal(t, PhaseApplied, s.Phase())
	assert.Equal(t, resp, s.Result())
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)
}

func TestApply_SubsetInItemOrder(t *testing.T) {
	backend := &fakeVerifyAPI{}
	s := reviewingSession(t, backend)

	require.NoError(t, s.Select(3))
	require.NoError(t, s.Select(1))

	_, err := s.Apply(context.Background())
	require.NoError(t, err)
	require.Len(t, backend.lastUpdates, 2)
	assert.Equal(t, int64(1), backend.lastUpdates[0].StatementRecordID, "item order, not selection order")
	assert.Equal(t, int64(3), backend.lastUpdates[1].StatementRecordID)
}

func TestApply_PartialFailureReported(t *testing.T) {
	backend := &fakeVerifyAPI{bulkResp: &model.BulkUpdateResponse{
		Results: []model.BulkUpdateResult{
			{StatementRecordID: 1, Success: true, NewState: model.StateProcessed},
			{StatementRecordID: 2, Success: false, ErrorMessage: "record locked"},
		},
		Updated: 1,
		Failed:  1,
	}}
	s := reviewingSession(t, backend)
	s.ToggleAll()

	resp, err := s.Apply(context.Background())
	require.NoError(t, err, "per-record failures never abort the batch")
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "record locked", resp.Results[1].ErrorMessage)
	assert.Equal(t, PhaseApplied, s.Phase())
}

func TestApplied_IsTerminal(t *testing.T) {
	backend := &fakeVerifyAPI{}
	s := reviewingSession(t, backend)
	s.ToggleAll()

	_, err := s.Apply(context.Background())
	require.NoError(t, err)

	_, err = s.Apply(context.Background())
	assert.Error(t, err)
	assert.Error(t, s.Select(1))
	assert.Error(t, s.Run(context.Background(), []int64{1}))

	// A fresh cycle needs a fresh session with its own identity.
	s2 := NewSession(backend, nil)
	assert.Equal(t, PhaseIdle, s2.Phase())
	assert.NotEqual(t, s.ID(), s2.ID())
}
