package history

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy for loading a history file. Callers match with errors.Is.
var (
	ErrSourceUnavailable  = errors.New("history source unavailable")
	ErrUnrecognizedFormat = errors.New("unrecognized history format")
	ErrCorruptHistoryFile = errors.New("corrupt history file")
)

// Format identifies one of the supported history grammars
type Format string

const (
	FormatPlain      Format = "plain"
	FormatExtended   Format = "extended"
	FormatStructured Format = "structured"
	FormatSQLite     Format = "sqlite"
)

// RawEntry is a single command as persisted by the shell, before canonicalization.
// A zero Timestamp means the source carried no (usable) timestamp.
type RawEntry struct {
	Text          string
	Timestamp     time.Time
	Duration      time.Duration
	HasDuration   bool
	ExitStatus    int
	HasExitStatus bool
	Line          int // 1-based line (or row) in the source
}

// Warning describes a recoverable problem with one entry.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line <= 0 {
		return w.Message
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Result is the output of a successful parse.
type Result struct {
	Format   Format
	Entries  []RawEntry
	Warnings []Warning
}

// Parser is implemented by every supported grammar.
type Parser interface {
	Format() Format
	// Sniff is a cheap structural check over the head of the file.
	Sniff(s Sample) bool
	// Accepts reports whether the first non-empty line could start a file of this format.
	Accepts(line string) bool
	Parse(content []byte) ([]RawEntry, []Warning, error)
}

func corrupt(format Format, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrCorruptHistoryFile, format, reason)
}
