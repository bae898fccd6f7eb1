package history

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	sampleLines = 50
	sampleBytes = 4096
)

// Sample is the head of a history file handed to the sniff predicates.
type Sample struct {
	Head  []byte
	Lines []string
}

// NewSample takes the first sampleBytes bytes and first sampleLines lines of content.
func NewSample(content []byte) Sample {
	head := content
	if len(head) > sampleBytes {
		head = head[:sampleBytes]
	}
	var lines []string
	rest := content
	for len(rest) > 0 && len(lines) < sampleLines {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			lines = append(lines, strings.TrimSuffix(string(rest), "\r"))
			break
		}
		lines = append(lines, strings.TrimSuffix(string(rest[:i]), "\r"))
		rest = rest[i+1:]
	}
	return Sample{Head: head, Lines: lines}
}

// FirstLine returns the first non-blank sampled line.
func (s Sample) FirstLine() string {
	for _, line := range s.Lines {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

// registry is in sniff priority order: more specific grammars first.
var registry = []Parser{
	SQLiteParser{},
	StructuredParser{},
	ExtendedParser{},
	PlainParser{},
}

// Parsers returns the registered parsers in sniff priority order.
func Parsers() []Parser {
	out := make([]Parser, len(registry))
	copy(out, registry)
	return out
}

// ParserFor returns the parser for a format.
func ParserFor(f Format) (Parser, bool) {
	for _, p := range registry {
		if p.Format() == f {
			return p, true
		}
	}
	return nil, false
}

// FormatForHint maps a shell name (or a format name) to a grammar.
func FormatForHint(hint string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "bash", "zsh", "ksh", "mksh", "extended":
		return FormatExtended, true
	case "fish", "structured":
		return FormatStructured, true
	case "atuin", "fh", "sqlite":
		return FormatSQLite, true
	case "sh", "dash", "tcsh", "csh", "plain":
		return FormatPlain, true
	}
	return "", false
}

// Detect decides which grammar applies to content. A hint is honoured when its
// parser accepts the first non-empty line; otherwise every parser is sniffed.
func Detect(content []byte, hint string) (Format, error) {
	sample := NewSample(content)

	if hint != "" {
		if f, ok := FormatForHint(hint); ok {
			p, _ := ParserFor(f)
			if first := sample.FirstLine(); first != "" && p.Accepts(first) {
				return f, nil
			}
		}
	}

	for _, p := range registry {
		if p.Sniff(sample) {
			return p.Format(), nil
		}
	}
	return "", fmt.Errorf("%w: no grammar matched the first %d lines", ErrUnrecognizedFormat, len(sample.Lines))
}

// Parse detects the grammar and parses content with it.
func Parse(content []byte, hint string) (*Result, error) {
	format, err := Detect(content, hint)
	if err != nil {
		return nil, err
	}
	p, _ := ParserFor(format)
	entries, warnings, err := p.Parse(content)
	if err != nil {
		return nil, err
	}
	return &Result{Format: format, Entries: entries, Warnings: warnings}, nil
}

// looksBinary reports content that cannot be treated as line-oriented text.
func looksBinary(b []byte) bool {
	if bytes.IndexByte(b, 0) >= 0 {
		return true
	}
	if utf8.Valid(b) {
		return false
	}
	invalid := 0
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return invalid*10 > len(b)
}

// splitLines splits on '\n' and drops a trailing '\r' from each line.
func splitLines(content []byte) []string {
	s := string(content)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
