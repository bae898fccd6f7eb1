package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"past/history"
	"past/query"
	"past/record"
)

const (
	defaultWidth = 80
	maxWidth     = 120
	barWidth     = 24
)

// Reporter renders query results as text or JSON
type Reporter struct {
	out      io.Writer
	json     bool
	colorize bool
	width    int
	loc      *time.Location
}

// NewReporter creates a reporter. Colour and width come from the terminal when
// out is one; NO_COLOR or PAST_NO_COLOR turn colour off.
func NewReporter(out io.Writer, jsonOutput bool, loc *time.Location) *Reporter {
	r := &Reporter{
		out:   out,
		json:  jsonOutput,
		width: getEnvInt("COLUMNS", defaultWidth),
		loc:   loc,
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.colorize = os.Getenv("NO_COLOR") == "" && !getEnvBool(envVarPrefix+"NO_COLOR", false)
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			r.width = w
		}
	}
	if r.width > maxWidth {
		r.width = maxWidth
	}
	if r.width < 40 {
		r.width = 40
	}
	if r.loc == nil {
		r.loc = time.Local
	}
	return r
}

func (r *Reporter) colorText(text, color string) string {
	if !r.colorize {
		return text
	}

	colors := map[string]string{
		"red":    "\033[31m",
		"green":  "\033[32m",
		"yellow": "\033[33m",
		"blue":   "\033[34m",
		"cyan":   "\033[36m",
		"dim":    "\033[2m",
		"bold":   "\033[1m",
		"reset":  "\033[0m",
	}

	if colorCode, exists := colors[color]; exists {
		return colorCode + text + colors["reset"]
	}
	return text
}

func (r *Reporter) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// statsView is the JSON form of a statistics report
type statsView struct {
	Source string         `json:"source"`
	Format history.Format `json:"format"`
	query.Stats
}

// Stats prints a statistics report for the history file at source
func (r *Reporter) Stats(source string, format history.Format, st query.Stats) error {
	if r.json {
		return r.writeJSON(statsView{Source: source, Format: format, Stats: st})
	}

	r.header(fmt.Sprintf("History of %s (%s)", source, format))
	r.row("Commands", humanize.Comma(int64(st.Total)))
	r.row("Unique", humanize.Comma(int64(st.Unique)))
	if st.TopHead != nil {
		r.row("Most used", fmt.Sprintf("%s (%s)", st.TopHead.Token, humanize.Comma(int64(st.TopHead.Count))))
	}
	if st.Warnings > 0 {
		r.row("Warnings", r.colorText(humanize.Comma(int64(st.Warnings)), "yellow"))
	}

	if len(st.Categories) > 0 {
		r.section("Categories")
		top := st.Categories[0].Count
		for _, c := range st.Categories {
			r.bar(string(c.Category), c.Count, top, st.Total)
		}
	}

	if st.Level == query.Brief {
		r.footer()
		return nil
	}

	if st.Timestamped > 0 {
		r.section("Timeline")
		r.row("Timestamped", fmt.Sprintf("%s of %s", humanize.Comma(int64(st.Timestamped)), humanize.Comma(int64(st.Total))))
		if st.First != nil && st.Last != nil {
			r.row("First", st.First.In(r.loc).Format("2006-01-02 15:04"))
			r.row("Last", fmt.Sprintf("%s (%s)", st.Last.In(r.loc).Format("2006-01-02 15:04"), humanize.Time(*st.Last)))
		}
	}

	if len(st.Days) > 0 {
		r.section("Per day")
		top := 0
		for _, d := range st.Days {
			top = max(top, d.Count)
		}
		for _, d := range st.Days {
			r.bar(d.Day, d.Count, top, st.Total)
		}
	}

	if len(st.TopHeads) > 0 {
		r.section(fmt.Sprintf("Top %d commands", len(st.TopHeads)))
		for i, h := range st.TopHeads {
			r.line(fmt.Sprintf("%3d. %-20s %s", i+1, h.Token, humanize.Comma(int64(h.Count))))
		}
	}

	if len(st.TopCommands) > 0 {
		r.section("Most frequent commands")
		r.counts(st.TopCommands)
	}

	r.section("Keywords")
	r.row("Total", humanize.Comma(int64(st.Keywords)))
	r.row("Distinct", humanize.Comma(int64(st.UniqueKeywords)))
	if len(st.TopKeywords) > 0 {
		r.line("")
		r.counts(st.TopKeywords)
	}
	r.footer()
	return nil
}

// recordView is the JSON form of a command record
type recordView struct {
	ID         int        `json:"id"`
	Line       int        `json:"line"`
	Command    string     `json:"command"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
	Duration   string     `json:"duration,omitempty"`
	ExitStatus *int       `json:"exit_status,omitempty"`
	Categories []string   `json:"categories"`
}

func newRecordView(rec record.CommandRecord) recordView {
	v := recordView{ID: rec.ID, Line: rec.Line, Command: rec.Text}
	if rec.TimeKnown() {
		t := rec.ExecutedAt
		v.ExecutedAt = &t
	}
	if rec.HasDuration {
		v.Duration = rec.Duration.String()
	}
	if rec.HasExitStatus {
		code := rec.ExitStatus
		v.ExitStatus = &code
	}
	for _, c := range rec.Categories {
		v.Categories = append(v.Categories, string(c))
	}
	return v
}

// Records prints a list of matching commands under a title
func (r *Reporter) Records(title string, recs []record.CommandRecord) error {
	if r.json {
		views := make([]recordView, len(recs))
		for i, rec := range recs {
			views[i] = newRecordView(rec)
		}
		return r.writeJSON(struct {
			Query   string       `json:"query"`
			Count   int          `json:"count"`
			Results []recordView `json:"results"`
		}{title, len(recs), views})
	}

	fmt.Fprintf(r.out, "%s %s\n", r.colorText(title, "blue"),
		r.colorText(fmt.Sprintf("(%s matches)", humanize.Comma(int64(len(recs)))), "dim"))
	for _, rec := range recs {
		fmt.Fprintln(r.out, r.recordLine(rec))
	}
	return nil
}

func (r *Reporter) recordLine(rec record.CommandRecord) string {
	when := "                "
	if rec.TimeKnown() {
		when = rec.ExecutedAt.In(r.loc).Format("2006-01-02 15:04")
	}
	status := " "
	if rec.HasExitStatus && rec.ExitStatus != 0 {
		status = r.colorText("!", "red")
	}
	prefix := fmt.Sprintf("%6d  %s %s ", rec.Line, r.colorText(when, "dim"), status)
	return prefix + truncate(rec.Text, r.width-6-2-16-3)
}

// Sources prints the detected history files
func (r *Reporter) Sources(sources []HistorySource) error {
	if r.json {
		if sources == nil {
			sources = []HistorySource{}
		}
		return r.writeJSON(sources)
	}
	if len(sources) == 0 {
		fmt.Fprintln(r.out, "No shell history files found.")
		return nil
	}
	fmt.Fprintf(r.out, "Detected %d shell history file(s):\n\n", len(sources))
	for i, src := range sources {
		status := "readable"
		if !src.Readable {
			status = r.colorText("not readable", "red")
		}
		shell := src.Shell
		if shell == "" {
			shell = "unknown"
		}
		fmt.Fprintf(r.out, "%d. %s (%s, %s, %s, %s)\n", i+1, src.Path, shell, src.Origin, humanize.Bytes(uint64(src.Size)), status)
	}
	return nil
}

func (r *Reporter) header(title string) {
	inner := r.width - 4
	fmt.Fprintf(r.out, "╭─ %s %s╮\n", r.colorText(truncate(title, inner-2), "bold"), strings.Repeat("─", max(0, inner-1-displayWidth(truncate(title, inner-2)))))
}

func (r *Reporter) section(title string) {
	fmt.Fprintf(r.out, "│\n│ %s\n", r.colorText(title, "cyan"))
}

func (r *Reporter) footer() {
	fmt.Fprintf(r.out, "╰%s╯\n", strings.Repeat("─", r.width-2))
}

func (r *Reporter) row(label, value string) {
	fmt.Fprintf(r.out, "│   %-14s %s\n", label, value)
}

func (r *Reporter) line(text string) {
	fmt.Fprintf(r.out, "│ %s\n", text)
}

// counts lists ranked texts, truncated to fit the box
func (r *Reporter) counts(cs []query.TextCount) {
	for i, c := range cs {
		r.line(fmt.Sprintf("%3d. %-*s %8s", i+1, r.width-20, truncate(c.Text, r.width-20), humanize.Comma(int64(c.Count))))
	}
}

// bar draws a labelled histogram row scaled to top, with a share of total
func (r *Reporter) bar(label string, count, top, total int) {
	n := 0
	if top > 0 {
		n = count * barWidth / top
	}
	if n == 0 && count > 0 {
		n = 1
	}
	share := 0.0
	if total > 0 {
		share = float64(count) * 100 / float64(total)
	}
	fmt.Fprintf(r.out, "│   %-22s %s%s %8s %5.1f%%\n", truncate(label, 22),
		r.colorText(strings.Repeat("█", n), "green"), strings.Repeat(" ", barWidth-n),
		humanize.Comma(int64(count)), share)
}

func displayWidth(s string) int {
	return len([]rune(s))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
