// Package verify drives the bulk verification pipeline: a selected set of
// statement records is sent to the backend for matching against company
// orders, the user reviews the suggested states, and the chosen subset is
// committed in one bulk update. A Session lives for exactly one
// Idle → Verifying → Reviewing → Applying → Applied cycle; nothing is
// persisted across sessions.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/movingwise/reconcile/internal/model"
)

// Phase is the lifecycle state of a verification session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseVerifying Phase = "verifying"
	PhaseReviewing Phase = "reviewing"
	PhaseApplying  Phase = "applying"
	PhaseApplied   Phase = "applied"
	PhaseFailed    Phase = "failed"
)

var (
	// ErrNoRecords rejects a verify run over an empty selection.
	ErrNoRecords = errors.New("verify: no records selected")
	// ErrEmptySelection rejects an apply with zero selected rows; a vacuous
	// bulk update is never sent.
	ErrEmptySelection = errors.New("apply: no rows selected for update")
)

// VerifyAPI is the slice of the backend client a session needs.
type VerifyAPI interface {
	Verify(ctx context.Context, ids []int64) (*model.VerifyResponse, error)
	BulkUpdateState(ctx context.Context, updates []model.StateUpdate) (*model.BulkUpdateResponse, error)
}

// Session is one verification dialog's working memory. Not safe for
// concurrent use; the workflow is single-caller by design.
type Session struct {
	id     string
	api    VerifyAPI
	logger *slog.Logger

	phase    Phase
	items    []model.VerificationItem
	byID     map[int64]int // record id -> index into items
	selected map[int64]bool
	missing  []int64
	result   *model.BulkUpdateResponse
}

// NewSession creates an idle session.
func NewSession(backend VerifyAPI, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		id:       uuid.NewString(),
		api:      backend,
		logger:   logger,
		phase:    PhaseIdle,
		byID:     make(map[int64]int),
		selected: make(map[int64]bool),
	}
}

// ID identifies the session in logs and the action log.
func (s *Session) ID() string { return s.id }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Run verifies the given record ids. On success the session enters
// Reviewing with the backend's verification list, order preserved. Records
// the backend did not return become warnings, not failures. A transport
// failure ends the session in Failed.
func (s *Session) Run(ctx context.Context, ids []int64) error {
	if s.phase != PhaseIdle {
		return s.phaseError("run verification")
	}
	if len(ids) == 0 {
		return ErrNoRecords
	}

	s.phase = PhaseVerifying
	resp, err := s.api.Verify(ctx, ids)
	if err != nil {
		s.phase = PhaseFailed
		return fmt.Errorf("verifying %d records: %w", len(ids), err)
	}

	s.items = resp.Verifications
	s.missing = resp.MissingIDs
	for i := range s.items {
		s.byID[s.items[i].StatementRecordID] = i
	}
	s.phase = PhaseReviewing

	s.logger.Debug("verification complete",
		"session", s.id,
		"requested", len(ids),
		"returned", len(s.items),
		"missing", len(s.missing))
	return nil
}

// Items returns the verifications in backend order.
func (s *Session) Items() []model.VerificationItem { return s.items }

// Item looks up a verification by statement record id.
func (s *Session) Item(recordID int64) (*model.VerificationItem, bool) {
	i, ok := s.byID[recordID]
	if !ok {
		return nil, false
	}
	return &s.items[i], true
}

// MissingIDs lists requested records the backend did not return. Non-empty
// is a warning to surface, never a failure.
func (s *Session) MissingIDs() []int64 { return s.missing }

// Select marks a verified row for the bulk update.
func (s *Session) Select(recordID int64) error {
	if s.phase != PhaseReviewing {
		return s.phaseError("select")
	}
	if _, ok := s.byID[recordID]; !ok {
		return fmt.Errorf("select: record %d is not part of this verification", recordID)
	}
	s.selected[recordID] = true
	return nil
}

// Deselect unmarks a row.
func (s *Session) Deselect(recordID int64) error {
	if s.phase != PhaseReviewing {
		return s.phaseError("deselect")
	}
	delete(s.selected, recordID)
	return nil
}

// IsSelected reports whether a row is marked for update.
func (s *Session) IsSelected(recordID int64) bool { return s.selected[recordID] }

// SelectedCount returns the number of rows marked for update.
func (s *Session) SelectedCount() int { return len(s.selected) }

// ToggleAll implements the select-all control: when every row is already
// selected it deselects all, otherwise it selects all. A partial manual
// selection therefore resolves to full selection.
func (s *Session) ToggleAll() {
	if s.phase != PhaseReviewing {
		return
	}
	if len(s.selected) == len(s.items) && len(s.items) > 0 {
		s.selected = make(map[int64]bool)
		return
	}
	for i := range s.items {
		s.selected[s.items[i].StatementRecordID] = true
	}
}

// CanDistribute reports whether "apply to orders" is offered for a record:
// it must have a verification with at least one matched order.
func (s *Session) CanDistribute(recordID int64) bool {
	item, ok := s.Item(recordID)
	return ok && item.HasMatches && item.MatchingOrdersCount > 0
}

// Apply commits the selected rows' suggested states in one bulk update and
// ends the session in Applied. The payload always carries each item's
// suggested state, never its current one. An empty selection is rejected
// before any network call.
func (s *Session) Apply(ctx context.Context) (*model.BulkUpdateResponse, error) {
	if s.phase != PhaseReviewing {
		return nil, s.phaseError("apply changes")
	}
	if len(s.selected) == 0 {
		return nil, ErrEmptySelection
	}

	updates := make([]model.StateUpdate, 0, len(s.selected))
	for _, item := range s.items {
		if !s.selected[item.StatementRecordID] {
			continue
		}
		updates = append(updates, model.StateUpdate{
			StatementRecordID: item.StatementRecordID,
			NewState:          item.SuggestedState,
		})
	}

	s.phase = PhaseApplying
	resp, err := s.api.BulkUpdateState(ctx, updates)
	if err != nil {
		s.phase = PhaseFailed
		return nil, fmt.Errorf("applying %d state updates: %w", len(updates), err)
	}

	s.result = resp
	s.phase = PhaseApplied
	s.logger.Debug("bulk update applied",
		"session", s.id,
		"updated", resp.Updated,
		"failed", resp.Failed)
	return resp, nil
}

// Result returns the bulk update outcome table, nil before Applied.
func (s *Session) Result() *model.BulkUpdateResponse { return s.result }

func (s *Session) phaseError(op string) error {
	return fmt.Errorf("verify session: cannot %s in phase %s", op, s.phase)
}
