package history

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StructuredParser reads block-per-entry history in the layout fish uses:
//
//	- cmd: git status
//	  when: 1700000000
//	  paths:
//	    - src
type StructuredParser struct{}

func (StructuredParser) Format() Format { return FormatStructured }

func (p StructuredParser) Sniff(s Sample) bool {
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

func (StructuredParser) Accepts(line string) bool {
	key, _, ok := blockField(strings.TrimPrefix(line, "- "))
	return ok && strings.HasPrefix(line, "- ") && isCommandKey(key)
}

type block struct {
	line   int
	fields map[string]string
	lines  map[string]int
}

func (StructuredParser) Parse(content []byte) ([]RawEntry, []Warning, error) {
	if looksBinary(content) {
		return nil, nil, corrupt(FormatStructured, "content is not text")
	}

	var (
		entries  []RawEntry
		warnings []Warning
		cur      *block
	)

	flush := func() {
		if cur == nil {
			return
		}
		entry, ws, ok := cur.entry()
		warnings = append(warnings, ws...)
		if ok {
			entries = append(entries, entry)
		}
		cur = nil
	}

	for i, line := range splitLines(content) {
		lineNo := i + 1
		switch {
		case strings.TrimSpace(line) == "":
			continue
		case strings.HasPrefix(line, "- "):
			flush()
			cur = &block{line: lineNo, fields: map[string]string{}, lines: map[string]int{}}
			cur.set(strings.TrimPrefix(line, "- "), lineNo)
		case strings.HasPrefix(line, "    "):
			// nested list items (paths) carry nothing we index
			continue
		case strings.HasPrefix(line, "  ") && cur != nil:
			cur.set(strings.TrimPrefix(line, "  "), lineNo)
		default:
			warnings = append(warnings, Warning{Line: lineNo, Message: "line outside of any entry block"})
		}
	}
	flush()

	return entries, warnings, nil
}

func (b *block) set(field string, lineNo int) {
	key, value, ok := blockField(field)
	if !ok {
		return
	}
	if _, dup := b.fields[key]; dup {
		return
	}
	b.fields[key] = value
	b.lines[key] = lineNo
}

func (b *block) lookup(keys ...string) (string, int, bool) {
	for _, k := range keys {
		if v, ok := b.fields[k]; ok {
			return v, b.lines[k], true
		}
	}
	return "", 0, false
}

func (b *block) entry() (RawEntry, []Warning, bool) {
	var warnings []Warning
	entry := RawEntry{Line: b.line}

	text, _, ok := b.lookup("cmd", "command")
	if !ok || strings.TrimSpace(text) == "" {
		return entry, []Warning{{Line: b.line, Message: "entry block has no command"}}, false
	}
	entry.Text = unescapeFish(text)

	if v, line, ok := b.lookup("when", "timestamp", "time"); ok {
		if ts, err := parseEpoch(strings.TrimSpace(v)); err == nil {
			entry.Timestamp = ts
		} else if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
			entry.Timestamp = ts
		} else {
			warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf("unparsable timestamp %q", v)})
		}
	}

	if v, line, ok := b.lookup("duration"); ok {
		if d, err := parseDuration(strings.TrimSpace(v)); err == nil {
			entry.Duration = d
			entry.HasDuration = true
		} else {
			warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf("unparsable duration %q", v)})
		}
	}

	if v, line, ok := b.lookup("exit", "status", "exit_status"); ok {
		if code, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			entry.ExitStatus = code
			entry.HasExitStatus = true
		} else {
			warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf("unparsable exit status %q", v)})
		}
	}

	return entry, warnings, true
}

// blockField splits "key: value". A bare "key:" (e.g. "paths:") has an empty value.
func blockField(s string) (string, string, bool) {
	key, value, found := strings.Cut(s, ":")
	if !found || key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimPrefix(value, " "), true
}

func isCommandKey(key string) bool {
	return key == "cmd" || key == "command"
}

// parseDuration accepts whole seconds or a Go duration string ("1.5s", "250ms").
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration")
	}
	return d, nil
}

// unescapeFish decodes the two escapes fish writes: "\\n" and "\\\\".
func unescapeFish(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
