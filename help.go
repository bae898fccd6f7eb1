package main

import (
	"fmt"
	"io"
)

// showInteractiveHelp lists the keys understood by the interactive search
func showInteractiveHelp(w io.Writer) {
	fmt.Fprintln(w, "Interactive search:")
	fmt.Fprintln(w, "  <text>            - Filter as you type; the prompt shows the match count")
	fmt.Fprintln(w, "  Enter             - List the most recent matches, newest first")
	fmt.Fprintln(w, "  <number> Enter    - Print that command to stdout and exit")
	fmt.Fprintln(w, "  Enter (empty)     - List the most recent commands")

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  Commands:")
	fmt.Fprintln(w, "  :help             - Show this help message")
	fmt.Fprintln(w, "  :q, :quit         - Exit without selecting")
	fmt.Fprintln(w, "  Ctrl+C, Ctrl+D    - Exit without selecting")
}
