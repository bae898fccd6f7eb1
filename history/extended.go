package history

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// zsh EXTENDED_HISTORY: ": <start>:<elapsed>;<command>"
	zshMetaLine   = regexp.MustCompile(`^:\s*([^:;]*):([^;]*);(.*)$`)
	// bash with HISTTIMEFORMAT set: "#<epoch>" on its own line before the command
	bashMetaLine  = regexp.MustCompile(`^#(\d{9,})\s*$`)
	// bash reads any "#<digit>..." line as a timestamp, valid or not
	bashStampLine = regexp.MustCompile(`^#(\d\S*)\s*$`)
)

// zshMeta is the byte zsh uses to escape special characters in its history file.
const zshMeta = 0x83

// ExtendedParser reads timestamp-prefixed history (zsh extended and bash
// HISTTIMEFORMAT files).
type ExtendedParser struct{}

func (ExtendedParser) Format() Format { return FormatExtended }

func (p ExtendedParser) Sniff(s Sample) bool {
	if bytes.IndexByte(s.Head, 0) >= 0 {
		return false
	}
	for _, line := range s.Lines {
		if p.Accepts(line) {
			return true
		}
	}
	return false
}

func (ExtendedParser) Accepts(line string) bool {
	return zshMetaLine.MatchString(line) || bashMetaLine.MatchString(line)
}

func (ExtendedParser) Parse(content []byte) ([]RawEntry, []Warning, error) {
	if !utf8.Valid(content) && bytes.IndexByte(content, zshMeta) >= 0 {
		content = unmetafy(content)
	}
	if looksBinary(content) {
		return nil, nil, corrupt(FormatExtended, "content is not text")
	}

	lines := splitLines(content)
	var (
		entries  []RawEntry
		warnings []Warning
		pending  *RawEntry // bash timestamp waiting for its command
	)

	warn := func(line int, format string, args ...any) {
		warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lineNo := i + 1

		if m := bashStampLine.FindStringSubmatch(line); m != nil {
			if pending != nil {
				warn(pending.Line, "timestamp without a command")
			}
			pending = &RawEntry{Line: lineNo}
			if ts, err := parseEpoch(m[1]); err == nil {
				pending.Timestamp = ts
			} else {
				warn(lineNo, "unparsable timestamp %q", m[1])
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		var entry RawEntry
		var text string
		if m := zshMetaLine.FindStringSubmatch(line); m != nil {
			entry = RawEntry{Line: lineNo}
			if ts, err := parseEpoch(strings.TrimSpace(m[1])); err == nil {
				entry.Timestamp = ts
			} else {
				warn(lineNo, "unparsable timestamp %q", m[1])
			}
			if d := strings.TrimSpace(m[2]); d != "" {
				if secs, err := strconv.ParseInt(d, 10, 64); err == nil && secs >= 0 {
					entry.Duration = time.Duration(secs) * time.Second
					entry.HasDuration = true
				} else {
					warn(lineNo, "unparsable duration %q", m[2])
				}
			}
			text = m[3]
		} else if pending != nil {
			entry = *pending
			text = line
		} else {
			// legacy entry written before timestamps were enabled
			entry = RawEntry{Line: lineNo}
			text = line
		}
		pending = nil

		for continued(text) && i+1 < len(lines) {
			i++
			text = text[:len(text)-1] + "\n" + lines[i]
		}

		if strings.TrimSpace(text) == "" {
			warn(lineNo, "empty command")
			continue
		}
		entry.Text = text
		entries = append(entries, entry)
	}

	if pending != nil {
		warn(pending.Line, "timestamp without a command")
	}
	return entries, warnings, nil
}

func parseEpoch(s string) (time.Time, error) {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	if secs < 0 {
		return time.Time{}, fmt.Errorf("negative epoch %d", secs)
	}
	return time.Unix(secs, 0), nil
}

// continued reports a trailing, unescaped backslash.
func continued(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// unmetafy reverses zsh's metafication: 0x83 followed by (b ^ 0x20) encodes b.
func unmetafy(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == zshMeta && i+1 < len(b) {
			i++
			out = append(out, b[i]^0x20)
			continue
		}
		out = append(out, b[i])
	}
	return out
}
