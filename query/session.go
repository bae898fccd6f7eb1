package query

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"past/category"
	"past/history"
	"past/index"
	"past/record"
)

// ErrUnknownCategory is returned when a query names a category no rule defines.
var ErrUnknownCategory = errors.New("unknown category")

// UnknownCategoryError carries the offending name.
type UnknownCategoryError struct {
	Name string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Name)
}

func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }

// LoadOptions configures Load.
type LoadOptions struct {
	// Hint is a shell or format name passed to format detection.
	Hint string
	// Rules is the merged rule table; nil means built-in rules only.
	Rules *category.Table
	// Location timestamps are bucketed in; nil means time.Local.
	Location *time.Location
	Logger   *slog.Logger
}

// Session is the loaded, queryable state of one history file. It is immutable
// once Load returns, so queries may run concurrently without locking.
type Session struct {
	format   history.Format
	records  []record.CommandRecord
	lower    []string
	index    *index.Index
	table    *category.Table
	warnings []history.Warning
	loadTime time.Duration
}

// Load runs the whole pipeline: detect, parse, build records, categorize, index.
func Load(content []byte, opts LoadOptions) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	table := opts.Rules
	if table == nil {
		table = category.Builtin()
	}

	start := time.Now()
	res, err := history.Parse(content, opts.Hint)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed history", "format", res.Format, "entries", len(res.Entries), "warnings", len(res.Warnings))

	records := record.Build(res.Entries, table, record.Options{Location: opts.Location})
	s := newSession(res.Format, records, table, res.Warnings)
	s.loadTime = time.Since(start)

	logger.Debug("built session", "records", len(records), "tokens", s.index.TokenCount(), "elapsed", s.loadTime)
	return s, nil
}

// NewSession builds a session from records that are already canonical, e.g. in tests.
func NewSession(records []record.CommandRecord, table *category.Table) *Session {
	if table == nil {
		table = category.Builtin()
	}
	return newSession("", records, table, nil)
}

func newSession(format history.Format, records []record.CommandRecord, table *category.Table, warnings []history.Warning) *Session {
	lower := make([]string, len(records))
	for i, r := range records {
		lower[i] = strings.ToLower(r.Text)
	}
	return &Session{
		format:   format,
		records:  records,
		lower:    lower,
		index:    index.Build(records),
		table:    table,
		warnings: warnings,
	}
}

// Format is the grammar the history was parsed with.
func (s *Session) Format() history.Format { return s.format }

// Len is the number of records.
func (s *Session) Len() int { return len(s.records) }

// Records returns all records in id order. The slice must not be modified.
func (s *Session) Records() []record.CommandRecord { return s.records }

// Record returns the record with the given id.
func (s *Session) Record(id int) (record.CommandRecord, bool) {
	if id < 0 || id >= len(s.records) {
		return record.CommandRecord{}, false
	}
	return s.records[id], true
}

// Warnings lists the recoverable problems found while parsing.
func (s *Session) Warnings() []history.Warning { return s.warnings }

// Index exposes the derived lookups.
func (s *Session) Index() *index.Index { return s.index }

// Rules is the rule table the session was categorized with.
func (s *Session) Rules() *category.Table { return s.table }

// LoadTime is how long Load took.
func (s *Session) LoadTime() time.Duration { return s.loadTime }

func (s *Session) resolve(ids []int) []record.CommandRecord {
	out := make([]record.CommandRecord, len(ids))
	for i, id := range ids {
		out[i] = s.records[id]
	}
	return out
}
