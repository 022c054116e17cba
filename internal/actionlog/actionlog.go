// Package actionlog keeps a local CSV audit trail of mutating
// reconciliation actions (state transitions, bulk applies, distributions).
// Logging is best-effort: a write failure is the caller's warning, never an
// operation failure.
package actionlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the reconciliation log.
type Entry struct {
	Timestamp time.Time
	Session   string // verification session id, empty for single actions
	Action    string // "set-state", "bulk-apply", "distribute"
	RecordID  int64
	Detail    string // e.g. "Not_exists -> Processed", "action=add orders=3"
	Outcome   string // "success", "warning", "error"
}

// Header is the CSV header for reconcile-log.csv.
const Header = "timestamp,session,action,record_id,detail,outcome"

const (
	numFields   = 6
	logFileName = "reconcile-log.csv"
	colTime     = 0
	colSession  = 1
	colAction   = 2
	colRecordID = 3
	colDetail   = 4
	colOutcome  = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colSession] = e.Session
	row[colAction] = e.Action
	row[colRecordID] = strconv.FormatInt(e.RecordID, 10)
	row[colDetail] = e.Detail
	row[colOutcome] = e.Outcome
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	recordID, err := strconv.ParseInt(record[colRecordID], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing record id %q: %w", record[colRecordID], err)
	}

	return Entry{
		Timestamp: ts,
		Session:   record[colSession],
		Action:    record[colAction],
		RecordID:  recordID,
		Detail:    record[colDetail],
		Outcome:   record[colOutcome],
	}, nil
}

// Append writes entries to <dir>/reconcile-log.csv, creating the file and
// header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening reconcile log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/reconcile-log.csv. Returns an empty
// slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	path := filepath.Join(dir, logFileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening reconcile log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading reconcile log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
