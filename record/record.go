package record

import (
	"strings"
	"time"

	"past/category"
	"past/history"
)

// Unknown is the executed-at sentinel for entries whose source had no timestamp.
var Unknown = time.Time{}

// CommandRecord is the canonical unit every index and query works on.
type CommandRecord struct {
	ID            int
	Text          string
	ExecutedAt    time.Time
	Duration      time.Duration
	HasDuration   bool
	ExitStatus    int
	HasExitStatus bool
	Categories    []category.Category
	Tokens        []string
	Line          int
}

// TimeKnown reports whether ExecutedAt is a real timestamp.
func (r CommandRecord) TimeKnown() bool {
	return !r.ExecutedAt.IsZero()
}

// Head is the first token, used as the primary categorization key.
func (r CommandRecord) Head() string {
	if len(r.Tokens) == 0 {
		return ""
	}
	return r.Tokens[0]
}

// HasCategory reports whether c is one of the record's categories.
func (r CommandRecord) HasCategory(c category.Category) bool {
	for _, rc := range r.Categories {
		if rc == c {
			return true
		}
	}
	return false
}

// Options controls canonicalization.
type Options struct {
	// Location timestamps are reported in; nil means time.Local.
	Location *time.Location
}

// Build canonicalizes raw entries into records. IDs are positions in entries.
func Build(entries []history.RawEntry, table *category.Table, opts Options) []CommandRecord {
	if table == nil {
		table = category.Builtin()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	records := make([]CommandRecord, len(entries))
	for i, e := range entries {
		text := Normalize(e.Text)
		tokens := Tokenize(text)
		r := CommandRecord{
			ID:            i,
			Text:          text,
			ExecutedAt:    Unknown,
			Duration:      e.Duration,
			HasDuration:   e.HasDuration,
			ExitStatus:    e.ExitStatus,
			HasExitStatus: e.HasExitStatus,
			Tokens:        tokens,
			Line:          e.Line,
		}
		if !e.Timestamp.IsZero() {
			r.ExecutedAt = e.Timestamp.In(loc)
		}
		r.Categories = table.Categorize(tokens, text)
		records[i] = r
	}
	return records
}

// Normalize trims a command and folds multi-line continuations into one line,
// joining the pieces with a single space.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Tokenize splits on ASCII whitespace and lowercases; empty tokens are dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, isASCIISpace)
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
