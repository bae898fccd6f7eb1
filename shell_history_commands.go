package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"past/category"
	"past/query"
)

// globalOptions are the flags shared by every command
type globalOptions struct {
	configPath string
	file       string
	shell      string
	rulesFile  string
	timezone   string
	json       bool
	quiet      bool
	verbose    bool
}

// analyzeOptions select the query run by the root command
type analyzeOptions struct {
	brief       bool
	detailed    bool
	categories  []string
	search      string
	interactive bool
	topK        int
}

// runContext is what a command needs after flags and config are merged
type runContext struct {
	cfg      *Config
	cfgPath  string
	logger   *slog.Logger
	loc      *time.Location
	reporter *Reporter
}

func newRootCmd() *cobra.Command {
	global := &globalOptions{}
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "past",
		Short: "Analyze your shell history",
		Long: `past reads your shell history file and answers questions about it:
how many commands you ran, what kind of commands they were, and which ones
match a keyword or category.

bash, zsh, ksh and sh histories (with or without timestamps), fish histories
and atuin/fh SQLite databases are detected automatically.`,
		Example: `  past                       brief statistics for your login shell
  past --detailed -n 20      detailed statistics with the top 20 commands
  past -C version-control    every git/hg/svn command
  past -s docker             commands containing "docker"
  past -i                    interactive incremental search
  past -f ~/old_history --shell zsh --json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, global, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "config file (default "+DefaultConfigPath()+")")
	pf.StringVarP(&global.file, "file", "f", "", "history file to analyze instead of the detected one")
	pf.StringVar(&global.shell, "shell", "", "shell or format of the history (bash, zsh, fish, ksh, sh, tcsh, atuin, plain, extended, structured, sqlite)")
	pf.StringVar(&global.rulesFile, "rules", "", "category rules file (default "+DefaultRulesPath()+")")
	pf.StringVar(&global.timezone, "timezone", "", "timezone for dates and day buckets (default local)")
	pf.BoolVarP(&global.json, "json", "j", false, "print results as JSON")
	pf.BoolVarP(&global.quiet, "quiet", "q", false, "only log errors")
	pf.BoolVarP(&global.verbose, "verbose", "v", false, "log debug details and list every parse warning")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	f := cmd.Flags()
	f.BoolVar(&opts.brief, "brief", false, "brief statistics (default)")
	f.BoolVar(&opts.detailed, "detailed", false, "detailed statistics: per-day counts, top commands, keywords")
	f.StringSliceVarP(&opts.categories, "category", "C", nil, "list commands in a category (repeatable)")
	f.StringVarP(&opts.search, "search", "s", "", "list commands containing a keyword")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "interactive incremental search")
	f.IntVarP(&opts.topK, "top-k", "n", 0, "number of top commands in detailed statistics (default from config)")
	cmd.MarkFlagsMutuallyExclusive("brief", "detailed", "category", "search", "interactive")

	cmd.AddCommand(
		newSourcesCmd(global),
		newRulesCmd(global),
		newConfigCmd(global),
		newVersionCmd(),
	)

	cmd.Version = GetVersionShort()
	cmd.SetVersionTemplate("past {{.Version}}\n")
	return cmd
}

// setup merges the config file, environment and flags
func (g *globalOptions) setup(cmd *cobra.Command) (*runContext, error) {
	cfg, cfgPath, err := LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("shell") {
		cfg.Shell = g.shell
	}
	if flags.Changed("file") {
		cfg.HistoryFile = g.file
	}
	if flags.Changed("rules") {
		cfg.RulesFile = g.rulesFile
	}
	if flags.Changed("timezone") {
		cfg.Timezone = g.timezone
	}
	if g.json {
		cfg.Output = OutputJSON
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, g.verbose, g.quiet)
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}

	return &runContext{
		cfg:      cfg,
		cfgPath:  cfgPath,
		logger:   logger,
		loc:      loc,
		reporter: NewReporter(cmd.OutOrStdout(), cfg.Output == OutputJSON, loc),
	}, nil
}

// ruleTable merges the built-in rules with the user's rules file. A missing file
// at the default location is not an error.
func (rc *runContext) ruleTable() (*category.Table, error) {
	path := rc.cfg.RulesFile
	if path == "" {
		return category.Builtin(), nil
	}
	rules, err := category.LoadRulesFile(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultRulesPath() {
		rc.logger.Debug("no user rules file", "path", path)
		return category.Builtin(), nil
	}
	if err != nil {
		return nil, err
	}

	table, err := category.NewTable(rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rc.logger.Debug("loaded user rules", "path", path, "rules", len(rules))
	return table, nil
}

// loadSession locates, reads and analyzes the history file
func (rc *runContext) loadSession() (*query.Session, HistorySource, error) {
	table, err := rc.ruleTable()
	if err != nil {
		return nil, HistorySource{}, err
	}

	locator, err := NewHistoryLocator()
	if err != nil {
		return nil, HistorySource{}, err
	}
	src, err := locator.Locate(rc.cfg.Shell, rc.cfg.HistoryFile)
	if err != nil {
		return nil, HistorySource{}, err
	}
	rc.logger.Debug("using history file", "path", src.Path, "shell", src.Shell, "origin", src.Origin)

	content, err := ReadSource(src.Path)
	if err != nil {
		return nil, src, err
	}

	hint := rc.cfg.Shell
	if hint == "" {
		hint = src.Shell
	}
	session, err := query.Load(content, query.LoadOptions{
		Hint:     hint,
		Rules:    table,
		Location: rc.loc,
		Logger:   rc.logger,
	})
	if err != nil {
		return nil, src, fmt.Errorf("%s: %w", src.Path, err)
	}

	if warnings := session.Warnings(); len(warnings) > 0 {
		rc.logger.Warn("some history entries could not be fully parsed", "path", src.Path, "warnings", len(warnings))
		for _, w := range warnings {
			rc.logger.Debug("parse warning", "path", src.Path, "line", w.Line, "message", w.Message)
		}
	}
	rc.logger.Debug("history loaded", "format", session.Format(), "records", session.Len(), "elapsed", session.LoadTime())
	return session, src, nil
}

func runAnalyze(cmd *cobra.Command, global *globalOptions, opts *analyzeOptions) error {
	rc, err := global.setup(cmd)
	if err != nil {
		return err
	}
	session, src, err := rc.loadSession()
	if err != nil {
		return err
	}

	switch {
	case opts.interactive:
		return runInteractive(session, rc.cfg.InteractiveLimit, rc.loc)

	case len(opts.categories) > 0:
		recs, err := session.SearchCategories(opts.categories...)
		if err != nil {
			return err
		}
		return rc.reporter.Records("category: "+strings.Join(opts.categories, ", "), recs)

	case cmd.Flags().Changed("search"):
		return rc.reporter.Records(fmt.Sprintf("search: %q", opts.search), session.SearchKeyword(opts.search))

	case opts.detailed:
		topK := rc.cfg.TopK
		if cmd.Flags().Changed("top-k") {
			topK = opts.topK
		}
		return rc.reporter.Stats(src.Path, session.Format(), session.Statistics(query.Detailed, topK))

	default:
		return rc.reporter.Stats(src.Path, session.Format(), session.Statistics(query.Brief, 0))
	}
}

func newSourcesCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the shell history files found in your home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := global.setup(cmd)
			if err != nil {
				return err
			}
			locator, err := NewHistoryLocator()
			if err != nil {
				return err
			}
			return rc.reporter.Sources(locator.Detect())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), GetVersionInfo())
		},
	}
}
