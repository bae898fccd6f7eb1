package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"past/history"
)

// HistorySource is a history file found on disk
type HistorySource struct {
	Path     string `json:"path"`
	Shell    string `json:"shell"`
	Origin   string `json:"origin"`
	Size     int64  `json:"size"`
	Readable bool   `json:"readable"`
}

// Where a history path came from
const (
	originFlag    = "flag"
	originEnv     = "HISTFILE"
	originRC      = "rc file"
	originDefault = "default"
)

// knownShells is the order in which `past sources` reports shells
var knownShells = []string{"bash", "zsh", "fish", "ksh", "sh", "tcsh", "atuin"}

// HistoryLocator finds shell history files in the user's home directory
type HistoryLocator struct {
	homeDir string
	getenv  func(string) string
}

// NewHistoryLocator creates a locator for the current user
func NewHistoryLocator() (*HistoryLocator, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &HistoryLocator{homeDir: homeDir, getenv: os.Getenv}, nil
}

// DetectShell names the user's login shell from $SHELL, or "" when unknown
func (l *HistoryLocator) DetectShell() string {
	shell := filepath.Base(l.getenv("SHELL"))
	switch shell {
	case "mksh":
		return "ksh"
	case "dash":
		return "sh"
	case "csh":
		return "tcsh"
	}
	for _, known := range knownShells {
		if shell == known {
			return shell
		}
	}
	return ""
}

func (l *HistoryLocator) dataHome() string {
	if dir := l.getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(l.homeDir, ".local", "share")
}

func (l *HistoryLocator) zdotdir() string {
	if dir := l.getenv("ZDOTDIR"); dir != "" {
		return dir
	}
	return l.homeDir
}

// Candidates lists the default history locations for a shell, most likely first
func (l *HistoryLocator) Candidates(shell string) []string {
	home := func(name string) string { return filepath.Join(l.homeDir, name) }

	switch shell {
	case "bash":
		return []string{home(".bash_history")}
	case "zsh":
		zdot := l.zdotdir()
		return []string{
			filepath.Join(zdot, ".zsh_history"),
			filepath.Join(zdot, ".zhistory"),
			filepath.Join(zdot, ".histfile"),
		}
	case "fish":
		return []string{filepath.Join(l.dataHome(), "fish", "fish_history")}
	case "ksh":
		return []string{home(".sh_history"), home(".mksh_history")}
	case "sh":
		return []string{home(".sh_history"), home(".history")}
	case "tcsh":
		return []string{home(".history")}
	case "atuin":
		return []string{filepath.Join(l.dataHome(), "atuin", "history.db")}
	}

	var all []string
	for _, s := range knownShells {
		all = append(all, l.Candidates(s)...)
	}
	return all
}

// rcFiles lists the startup files that may set HISTFILE for a shell
func (l *HistoryLocator) rcFiles(shell string) []string {
	var names []string
	switch shell {
	case "bash":
		names = []string{".bashrc", ".bash_profile", ".profile"}
	case "zsh":
		zdot := l.zdotdir()
		return []string{filepath.Join(zdot, ".zshrc"), filepath.Join(zdot, ".zprofile"), filepath.Join(zdot, ".zshenv")}
	case "ksh":
		names = []string{".kshrc", ".mkshrc", ".profile"}
	case "sh":
		names = []string{".profile"}
	default:
		return nil
	}
	files := make([]string, len(names))
	for i, n := range names {
		files[i] = filepath.Join(l.homeDir, n)
	}
	return files
}

// Locate resolves the history file to analyze. An explicit path wins; then
// $HISTFILE, then a HISTFILE assignment in the shell's rc files, then the shell's
// default locations. The error wraps history.ErrSourceUnavailable.
func (l *HistoryLocator) Locate(shell, override string) (HistorySource, error) {
	if override != "" {
		return l.source(l.expand(override), shell, originFlag)
	}
	if shell == "" {
		shell = l.DetectShell()
	}

	// $HISTFILE describes the running shell; it is only trusted for that shell
	if hf := l.getenv("HISTFILE"); hf != "" && (shell == "" || shell == l.DetectShell()) {
		if src, err := l.source(l.expand(hf), shell, originEnv); err == nil {
			return src, nil
		}
	}

	for _, rc := range l.rcFiles(shell) {
		if hf := l.extractHistFileFromConfig(rc); hf != "" {
			if src, err := l.source(hf, shell, originRC); err == nil {
				return src, nil
			}
		}
	}

	candidates := l.Candidates(shell)
	for _, path := range candidates {
		if src, err := l.source(path, shell, originDefault); err == nil {
			if src.Shell == "" {
				src.Shell = l.shellForPath(path)
			}
			return src, nil
		}
	}

	name := shell
	if name == "" {
		name = "any shell"
	}
	return HistorySource{}, fmt.Errorf("%w: no history file found for %s (tried %s)",
		history.ErrSourceUnavailable, name, strings.Join(candidates, ", "))
}

// Detect lists every history file present for the known shells
func (l *HistoryLocator) Detect() []HistorySource {
	var found []HistorySource
	seen := make(map[string]bool)

	add := func(path, shell, origin string) {
		if seen[path] {
			return
		}
		if src, err := l.source(path, shell, origin); err == nil {
			seen[path] = true
			found = append(found, src)
		}
	}

	if hf := l.getenv("HISTFILE"); hf != "" {
		add(l.expand(hf), l.DetectShell(), originEnv)
	}
	for _, shell := range knownShells {
		for _, rc := range l.rcFiles(shell) {
			if hf := l.extractHistFileFromConfig(rc); hf != "" {
				add(hf, shell, originRC)
			}
		}
		for _, path := range l.Candidates(shell) {
			add(path, shell, originDefault)
		}
	}
	return found
}

func (l *HistoryLocator) source(path, shell, origin string) (HistorySource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return HistorySource{}, fmt.Errorf("%w: %v", history.ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return HistorySource{}, fmt.Errorf("%w: %s is a directory", history.ErrSourceUnavailable, path)
	}
	return HistorySource{
		Path:     path,
		Shell:    shell,
		Origin:   origin,
		Size:     info.Size(),
		Readable: isFileReadable(path),
	}, nil
}

func (l *HistoryLocator) shellForPath(path string) string {
	for _, shell := range knownShells {
		for _, c := range l.Candidates(shell) {
			if c == path {
				return shell
			}
		}
	}
	return ""
}

// expand replaces a leading ~ and $HOME with the home directory
func (l *HistoryLocator) expand(path string) string {
	switch {
	case path == "~":
		return l.homeDir
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(l.homeDir, path[2:])
	}
	path = strings.ReplaceAll(path, "${HOME}", l.homeDir)
	return strings.ReplaceAll(path, "$HOME", l.homeDir)
}

// extractHistFileFromConfig returns the last HISTFILE assignment in a shell
// config file, resolved against the home directory
func (l *HistoryLocator) extractHistFileFromConfig(configPath string) string {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return ""
	}

	histFile := ""
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimPrefix(line, "typeset ")
		value, ok := strings.CutPrefix(line, "HISTFILE=")
		if !ok {
			continue
		}
		// drop a trailing comment
		if i := strings.Index(value, " #"); i >= 0 {
			value = value[:i]
		}
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		if value != "" {
			histFile = value
		}
	}
	if histFile == "" {
		return ""
	}

	histFile = l.expand(histFile)
	if strings.Contains(histFile, "$") {
		// unexpanded variables other than $HOME cannot be resolved here
		return ""
	}
	if !filepath.IsAbs(histFile) {
		histFile = filepath.Join(l.homeDir, histFile)
	}
	return histFile
}

// isFileReadable checks if a file can be read by the current user
func isFileReadable(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer file.Close()

	buffer := make([]byte, 64)
	_, err = file.Read(buffer)
	return err == nil || errors.Is(err, io.EOF)
}

// ReadSource reads a whole history file. Failures wrap history.ErrSourceUnavailable.
func ReadSource(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", history.ErrSourceUnavailable, err)
	}
	return content, nil
}
