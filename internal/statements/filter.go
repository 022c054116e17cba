package statements

import (
	"strings"

	"github.com/movingwise/reconcile/internal/model"
)

// Filter returns the records whose keyref or shipper name contains query,
// case-insensitively. It preserves order and never mutates the input. An
// empty query matches everything.
//
// The filter is page-scoped: it only sees the currently loaded page, so it
// cannot find matches on other pages. Known limitation of the workflow, not
// a server-side search.
func Filter(records []model.StatementRecord, query string) []model.StatementRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}
	needle := strings.ToLower(query)

	var matched []model.StatementRecord
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.KeyRef), needle) ||
			strings.Contains(strings.ToLower(rec.ShipperName), needle) {
			matched = append(matched, rec)
		}
	}
	return matched
}
