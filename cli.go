package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"

	"past/history"
	"past/query"
	"past/record"
)

// Process exit codes
const (
	exitOK                = 0
	exitFailure           = 1
	exitSourceUnavailable = 2
	exitUnrecognized      = 3
	exitCorrupt           = 4
	exitUnknownCategory   = 5
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps the error taxonomy onto distinct process exit codes
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, history.ErrSourceUnavailable):
		return exitSourceUnavailable
	case errors.Is(err, history.ErrUnrecognizedFormat):
		return exitUnrecognized
	case errors.Is(err, history.ErrCorruptHistoryFile):
		return exitCorrupt
	case errors.Is(err, query.ErrUnknownCategory):
		return exitUnknownCategory
	}
	return exitFailure
}

// picker is the state of one interactive search, independent of the terminal
type picker struct {
	inc   *query.Incremental
	limit int
	loc   *time.Location
	shown []record.CommandRecord
}

func newPicker(session *query.Session, limit int, loc *time.Location) *picker {
	if loc == nil {
		loc = time.Local
	}
	return &picker{inc: session.Incremental(), limit: limit, loc: loc}
}

// prompt is redrawn on every keystroke with the live match count
func (p *picker) prompt(line string) string {
	if n, ok := p.selection(line); ok {
		if n >= 1 && n <= len(p.shown) {
			return fmt.Sprintf("select %d/%d ❯ ", n, len(p.shown))
		}
	}
	return fmt.Sprintf("past [%d] ❯ ", p.inc.Count(line))
}

func (p *picker) selection(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if len(p.shown) == 0 || line == "" {
		return 0, false
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, false
	}
	return n, true
}

// handle processes one entered line. It returns the selected command and
// whether the loop should stop.
func (p *picker) handle(line string, w io.Writer) (string, bool) {
	input := strings.TrimSpace(line)
	switch input {
	case ":q", ":quit", ":exit":
		return "", true
	case ":help", ":h", "?":
		showInteractiveHelp(w)
		return "", false
	}

	if n, ok := p.selection(input); ok {
		if n < 1 || n > len(p.shown) {
			fmt.Fprintf(w, "No entry %d; choose 1-%d\n", n, len(p.shown))
			return "", false
		}
		return p.shown[n-1].Text, true
	}

	p.inc.Update(line)
	p.shown = p.inc.Recent(p.limit)
	if len(p.shown) == 0 {
		fmt.Fprintln(w, "No matches.")
		return "", false
	}
	// oldest of the shown entries first so the newest sits next to the prompt
	for i := len(p.shown) - 1; i >= 0; i-- {
		rec := p.shown[i]
		when := ""
		if rec.TimeKnown() {
			when = rec.ExecutedAt.In(p.loc).Format("2006-01-02 15:04") + "  "
		}
		fmt.Fprintf(w, "%3d  %s%s\n", i+1, when, rec.Text)
	}
	return "", false
}

// runInteractive runs the incremental search on the terminal. Prompts and
// listings go to stderr; only the selected command is printed to stdout.
func runInteractive(session *query.Session, limit int, loc *time.Location) error {
	p := newPicker(session, limit, loc)

	var rl *readline.Instance
	cfg := &readline.Config{
		Prompt:            p.prompt(""),
		InterruptPrompt:   "^C",
		EOFPrompt:         "",
		HistoryLimit:      -1,
		HistorySearchFold: true,
		Stdout:            os.Stderr,
	}
	cfg.SetListener(func(line []rune, pos int, key rune) ([]rune, int, bool) {
		rl.SetPrompt(p.prompt(string(line)))
		rl.Refresh()
		return nil, 0, false
	})

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(os.Stderr, "Searching %d commands. Type to filter, Enter to list, :help for keys.\n", session.Len())
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt && line != "" {
				// Ctrl+C with text clears the line
				continue
			}
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		selected, done := p.handle(line, os.Stderr)
		if selected != "" {
			fmt.Fprintln(os.Stdout, selected)
		}
		if done {
			return nil
		}
		rl.SetPrompt(p.prompt(""))
	}
}
