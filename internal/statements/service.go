// Package statements loads weekly statement pages and manages the working
// set: pagination, the page-scoped text filter, and single-record state
// transitions. All copies are request-scoped; a mutating response simply
// replaces the matching in-memory record.
package statements

import (
	"context"
	"errors"
	"fmt"

	"github.com/movingwise/reconcile/internal/api"
	"github.com/movingwise/reconcile/internal/model"
)

var (
	ErrBadWeek     = errors.New("week must be between 1 and 53")
	ErrBadPage     = errors.New("page must be at least 1")
	ErrBadPageSize = errors.New("page size must be one of 10, 20, 50, 100")
	ErrNotLoaded   = errors.New("record is not in the loaded page")
)

// DefaultPageSize matches the dashboard default.
const DefaultPageSize = 20

var validPageSizes = map[int]bool{10: true, 20: true, 50: true, 100: true}

// StatementAPI is the slice of the backend client this service needs.
type StatementAPI interface {
	LoadByWeek(ctx context.Context, week, year, page, pageSize int) (*api.LoadResult, error)
	UpdateState(ctx context.Context, id int64, newState model.State) (*model.StatementRecord, error)
}

// Service fetches statement pages and applies single-record transitions.
type Service struct {
	api      StatementAPI
	pageSize int
}

// NewService creates a Service. pageSize 0 selects DefaultPageSize.
func NewService(backend StatementAPI, pageSize int) (*Service, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if !validPageSizes[pageSize] {
		return nil, ErrBadPageSize
	}
	return &Service{api: backend, pageSize: pageSize}, nil
}

// Page is one loaded page of statement records for a week.
type Page struct {
	Week       int
	Year       int
	PageNumber int
	PageSize   int
	TotalCount int
	Records    []model.StatementRecord
	Summary    *model.WeekSummary // nil when the backend omits it

	updating map[int64]bool
}

// TotalPages derives the page count from the server-reported total.
func (p *Page) TotalPages() int {
	if p.TotalCount == 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// Updating reports whether a record has a transition in flight.
func (p *Page) Updating(id int64) bool {
	return p.updating[id]
}

// Record returns the loaded record with the given id.
func (p *Page) Record(id int64) (*model.StatementRecord, bool) {
	for i := range p.Records {
		if p.Records[i].ID == id {
			return &p.Records[i], true
		}
	}
	return nil, false
}

// Load fetches one page of statement records. Arguments are validated
// before any network call; validation failures never reach the backend.
func (s *Service) Load(ctx context.Context, week, year, page int) (*Page, error) {
	if week < 1 || week > 53 {
		return nil, fmt.Errorf("load week %d: %w", week, ErrBadWeek)
	}
	if page < 1 {
		return nil, fmt.Errorf("load page %d: %w", page, ErrBadPage)
	}

	result, err := s.api.LoadByWeek(ctx, week, year, page, s.pageSize)
	if err != nil {
		return nil, err
	}

	return &Page{
		Week:       week,
		Year:       year,
		PageNumber: page,
		PageSize:   s.pageSize,
		TotalCount: result.Count,
		Records:    result.Records,
		Summary:    result.Summary,
		updating:   make(map[int64]bool),
	}, nil
}

// SetState transitions one record on the loaded page to newState. When the
// record already carries newState the call is a no-op and issues no network
// request. On success the record is replaced wholesale by identity; on
// failure the page is left untouched and the record's busy flag is cleared,
// so a failed row never stays stuck.
func (s *Service) SetState(ctx context.Context, page *Page, id int64, newState model.State) error {
	if !newState.Valid() {
		return fmt.Errorf("set state: invalid target state %q", string(newState))
	}
	rec, ok := page.Record(id)
	if !ok {
		return fmt.Errorf("set state %d: %w", id, ErrNotLoaded)
	}
	if rec.State == newState {
		return nil
	}

	if page.updating == nil {
		page.updating = make(map[int64]bool)
	}
	page.updating[id] = true
	defer delete(page.updating, id)

	updated, err := s.api.UpdateState(ctx, id, newState)
	if err != nil {
		return fmt.Errorf("set state %d: %w", id, err)
	}

	*rec = *updated
	return nil
}
