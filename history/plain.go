package history

import (
	"regexp"
	"strings"
)

// listingPrefix matches the numbering printed by the `history` builtin: "  123  cmd".
var listingPrefix = regexp.MustCompile(`^\s*\d+\*?\s+`)

// PlainParser reads one command per line, as bash writes without HISTTIMEFORMAT.
type PlainParser struct{}

func (PlainParser) Format() Format { return FormatPlain }

// Sniff accepts any text sample; it is the permissive fallback and must be tried last.
func (PlainParser) Sniff(s Sample) bool {
	return !looksBinary(s.Head)
}

func (PlainParser) Accepts(line string) bool {
	return strings.TrimSpace(line) != "" && !strings.ContainsRune(line, 0)
}

func (PlainParser) Parse(content []byte) ([]RawEntry, []Warning, error) {
	if looksBinary(content) {
		return nil, nil, corrupt(FormatPlain, "content is not text")
	}

	lines := splitLines(content)
	numbered := isHistoryListing(lines)

	entries := make([]RawEntry, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if numbered {
			line = listingPrefix.ReplaceAllString(line, "")
		}
		entries = append(entries, RawEntry{Text: line, Line: i + 1})
	}
	return entries, nil, nil
}

// isHistoryListing reports whether every non-blank line carries a listing number,
// i.e. the file is a saved `history` output rather than a raw history file.
func isHistoryListing(lines []string) bool {
	seen := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		loc := listingPrefix.FindStringIndex(line)
		if loc == nil || loc[1] == len(line) {
			return false
		}
		seen = true
	}
	return seen
}
