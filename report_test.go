package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"past/history"
	"past/query"
	"past/record"
)

func TestReporterStatsText(t *testing.T) {
	s := testSession("git status", "git push", "ls", "cd /tmp")
	var out bytes.Buffer
	r := NewReporter(&out, false, time.UTC)

	if err := r.Stats("/home/me/.bash_history", history.FormatPlain, s.Statistics(query.Detailed, 3)); err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Commands", "version-control", "filesystem-navigation", "Top 3 commands", "Most frequent commands", "git status", "Keywords"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in report:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\033[") {
		t.Errorf("expected no colour when not writing to a terminal")
	}
}

func TestReporterStatsJSON(t *testing.T) {
	s := testSession("git status", "ls", "git status")
	var out bytes.Buffer
	if err := NewReporter(&out, true, time.UTC).Stats("hist", history.FormatPlain, s.Statistics(query.Detailed, 5)); err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	var decoded struct {
		Source      string            `json:"source"`
		Total       int               `json:"total_commands"`
		TopCommands []query.TextCount `json:"top_commands"`
		TopKeywords []query.TextCount `json:"top_keywords"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if decoded.Source != "hist" || decoded.Total != 3 {
		t.Errorf("unexpected summary %+v", decoded)
	}
	if len(decoded.TopCommands) != 2 || decoded.TopCommands[0].Text != "git status" || decoded.TopCommands[0].Count != 2 {
		t.Errorf("unexpected top commands %+v", decoded.TopCommands)
	}
	if len(decoded.TopKeywords) != 3 || decoded.TopKeywords[0].Text != "git" {
		t.Errorf("unexpected top keywords %+v", decoded.TopKeywords)
	}
}

func TestReporterRecordsJSON(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	recs := record.Build([]history.RawEntry{
		{Text: "make test", Timestamp: ts, ExitStatus: 2, HasExitStatus: true, Line: 4},
		{Text: "ls", Line: 5},
	}, nil, record.Options{Location: time.UTC})

	var out bytes.Buffer
	if err := NewReporter(&out, true, time.UTC).Records("search", recs); err != nil {
		t.Fatalf("Records returned error: %v", err)
	}

	var decoded struct {
		Count   int `json:"count"`
		Results []struct {
			Command    string     `json:"command"`
			ExecutedAt *time.Time `json:"executed_at"`
			ExitStatus *int       `json:"exit_status"`
			Categories []string   `json:"categories"`
		} `json:"results"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if decoded.Count != 2 || len(decoded.Results) != 2 {
		t.Fatalf("unexpected results %+v", decoded)
	}
	first := decoded.Results[0]
	if first.ExecutedAt == nil || !first.ExecutedAt.Equal(ts) || first.ExitStatus == nil || *first.ExitStatus != 2 {
		t.Errorf("unexpected first result %+v", first)
	}
	if decoded.Results[1].ExecutedAt != nil {
		t.Errorf("expected an unknown timestamp to be omitted")
	}
	if len(first.Categories) != 1 || first.Categories[0] != "build" {
		t.Errorf("unexpected categories %v", first.Categories)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"too long", 5, "too …"},
		{"x", 0, ""},
		{"ab", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
