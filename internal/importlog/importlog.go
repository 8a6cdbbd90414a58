// Package importlog keeps a CSV audit trail of every imported and skipped
// row in logs/import-log.csv.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/model"
)

// Status is the outcome of one source row.
type Status string

const (
	StatusImported Status = "imported"
	StatusSkipped  Status = "skipped"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp time.Time
	Batch     string
	Source    string
	Row       int
	Status    Status
	Detail    string
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,batch,source,row,status,detail"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "logs/import-log.csv"
	colTimestamp = 0
	colBatch     = 1
	colSource    = 2
	colRow       = 3
	colStatus    = 4
	colDetail    = 5
)

// NewBatch returns a new batch id. Ids sort by creation time.
func NewBatch() string {
	return ulid.Make().String()
}

// Entries converts an import result into log entries in row order.
func Entries(batch, source string, res importer.Result, now time.Time) []Entry {
	entries := make([]Entry, 0, len(res.Entries)+len(res.Skipped))
	for _, e := range res.Entries {
		entries = append(entries, Entry{
			Timestamp: now,
			Batch:     batch,
			Source:    source,
			Row:       e.Row,
			Status:    StatusImported,
			Detail:    describe(e.Transaction),
		})
	}
	for _, s := range res.Skipped {
		entries = append(entries, Entry{
			Timestamp: now,
			Batch:     batch,
			Source:    source,
			Row:       s.Row,
			Status:    StatusSkipped,
			Detail:    s.Err.Error(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Row < entries[j].Row })
	return entries
}

func describe(t model.Transaction) string {
	return fmt.Sprintf("%s %s -> %s %s", t.Date.Format(model.DateFormat), t.OffsetAccount, t.Account, t.Amount.String())
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colBatch] = e.Batch
	row[colSource] = e.Source
	row[colRow] = strconv.Itoa(e.Row)
	row[colStatus] = string(e.Status)
	row[colDetail] = e.Detail
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	row, err := strconv.Atoi(record[colRow])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing row %q: %w", record[colRow], err)
	}

	return Entry{
		Timestamp: ts,
		Batch:     record[colBatch],
		Source:    record[colSource],
		Row:       row,
		Status:    Status(record[colStatus]),
		Detail:    record[colDetail],
	}, nil
}

// Append writes entries to <root>/logs/import-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
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
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/import-log.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
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

// Counts tallies imported and skipped rows of a batch.
func Counts(entries []Entry, batch string) (imported, skipped int) {
	for _, e := range entries {
		if e.Batch != batch {
			continue
		}
		switch e.Status {
		case StatusImported:
			imported++
		case StatusSkipped:
			skipped++
		}
	}
	return imported, skipped
}
