package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"past/history"
	"past/query"
	"past/record"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"source", fmt.Errorf("%w: no such file", history.ErrSourceUnavailable), exitSourceUnavailable},
		{"format", fmt.Errorf("x: %w", history.ErrUnrecognizedFormat), exitUnrecognized},
		{"corrupt", fmt.Errorf("x: %w", history.ErrCorruptHistoryFile), exitCorrupt},
		{"category", &query.UnknownCategoryError{Name: "astrology"}, exitUnknownCategory},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func testSession(texts ...string) *query.Session {
	entries := make([]history.RawEntry, len(texts))
	for i, text := range texts {
		entries[i] = history.RawEntry{Text: text, Line: i + 1}
	}
	return query.NewSession(record.Build(entries, nil, record.Options{Location: time.UTC}), nil)
}

func TestPickerFlow(t *testing.T) {
	p := newPicker(testSession("git status", "ls", "git push", "git status"), 10, time.UTC)
	var out bytes.Buffer

	if got := p.prompt("git"); got != "past [3] ❯ " {
		t.Errorf("unexpected prompt %q", got)
	}

	selected, done := p.handle("git", &out)
	if selected != "" || done {
		t.Fatalf("listing should not select, got %q %v", selected, done)
	}
	listing := out.String()
	if !strings.Contains(listing, "1  git status") || !strings.Contains(listing, "2  git push") {
		t.Errorf("unexpected listing:\n%s", listing)
	}

	if got := p.prompt("2"); got != "select 2/2 ❯ " {
		t.Errorf("unexpected selection prompt %q", got)
	}

	out.Reset()
	if selected, done := p.handle("5", &out); selected != "" || done || !strings.Contains(out.String(), "No entry 5") {
		t.Errorf("expected out-of-range selection to be rejected, got %q %v %q", selected, done, out.String())
	}

	selected, done = p.handle("2", &out)
	if selected != "git push" || !done {
		t.Errorf("expected git push to be selected, got %q %v", selected, done)
	}
}

func TestPickerCommands(t *testing.T) {
	p := newPicker(testSession("ls"), 10, nil)
	var out bytes.Buffer

	if _, done := p.handle(":help", &out); done || !strings.Contains(out.String(), "Interactive search") {
		t.Errorf("expected help to be shown")
	}
	if _, done := p.handle(":q", &out); !done {
		t.Errorf("expected :q to stop")
	}

	out.Reset()
	p.handle("nothing-like-this", &out)
	if !strings.Contains(out.String(), "No matches.") {
		t.Errorf("expected no matches, got %q", out.String())
	}
	// with nothing listed a number is an ordinary query
	if got := p.prompt("1"); got != "past [0] ❯ " {
		t.Errorf("unexpected prompt %q", got)
	}
}
