package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"past/category"
	"past/record"
)

func newRulesCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and manage category rules",
		Long: `Commands are categorized by rules: built-in rules for common tools plus
the rules in your rules file. User rules win over built-in ones unless they set
a lower priority. See "past rules init" for the file format.`,
	}
	cmd.AddCommand(
		newRulesListCmd(global),
		newRulesCheckCmd(global),
		newRulesExplainCmd(global),
		newRulesInitCmd(global),
		newRulesFetchCmd(global),
	)
	return cmd
}

func newRulesListCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the merged rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := global.setup(cmd)
			if err != nil {
				return err
			}
			table, err := rc.ruleTable()
			if err != nil {
				return err
			}
			builtin := len(category.Builtin().Rules())
			rules := table.Rules()

			if rc.reporter.json {
				type ruleView struct {
					Name     string   `json:"name,omitempty"`
					Category string   `json:"category"`
					Heads    []string `json:"heads,omitempty"`
					Pattern  string   `json:"pattern,omitempty"`
					Target   string   `json:"target"`
					Priority int      `json:"priority"`
					Source   string   `json:"source"`
				}
				views := make([]ruleView, len(rules))
				for i, r := range rules {
					views[i] = ruleView{r.Name, string(r.Category), r.Heads, r.Pattern, string(r.Target), r.Priority, ruleSource(i, builtin)}
				}
				return rc.reporter.writeJSON(views)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tPRIORITY\tSOURCE\tMATCHES")
			for i, r := range rules {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.Category, r.Priority, ruleSource(i, builtin), describeRule(r))
			}
			return w.Flush()
		},
	}
}

func ruleSource(i, builtin int) string {
	if i < builtin {
		return "built-in"
	}
	return "user"
}

func describeRule(r category.Rule) string {
	var parts []string
	if len(r.Heads) > 0 {
		heads := r.Heads
		if len(heads) > 8 {
			heads = append(heads[:8:8], fmt.Sprintf("+%d more", len(r.Heads)-8))
		}
		parts = append(parts, strings.Join(heads, " "))
	}
	if r.Pattern != "" {
		parts = append(parts, fmt.Sprintf("/%s/ on %s", r.Pattern, r.Target))
	}
	return strings.Join(parts, "; ")
}

func newRulesCheckCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a rules file (default: the configured one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := global.setup(cmd)
			if err != nil {
				return err
			}
			path := rc.cfg.RulesFile
			if len(args) == 1 {
				path = args[0]
			}
			rules, err := category.LoadRulesFile(path)
			if err != nil {
				return err
			}
			table, err := category.NewTable(rules)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rule(s) OK, %d categories known\n", path, len(rules), len(table.Categories()))
			return nil
		},
	}
}

func newRulesExplainCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <command...>",
		Short: "Show which rules categorize a command",
		Example: `  past rules explain sudo docker compose up
  past rules explain ./deploy.sh prod`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := global.setup(cmd)
			if err != nil {
				return err
			}
			table, err := rc.ruleTable()
			if err != nil {
				return err
			}

			text := record.Normalize(strings.Join(args, " "))
			tokens := record.Tokenize(text)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Command:    %s\n", text)
			fmt.Fprintf(out, "Head:       %s\n", category.EffectiveHead(tokens))
			fmt.Fprintf(out, "Categories: %s\n", joinCategories(table.Categorize(tokens, text)))

			matches := table.Explain(tokens, text)
			if len(matches) == 0 {
				fmt.Fprintln(out, "No rule matched.")
				return nil
			}
			fmt.Fprintln(out, "Matching rules:")
			for _, m := range matches {
				mark := " "
				if m.Winning {
					mark = "*"
				}
				name := m.Rule.Name
				if name == "" {
					name = "heads"
				}
				fmt.Fprintf(out, "  %s %-24s %-14s priority %d\n", mark, m.Rule.Category, name, m.Rule.Priority)
			}
			return nil
		},
	}
}

func joinCategories(cs []category.Category) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func newRulesInitCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented example rules file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := global.setup(cmd)
			if err != nil {
				return err
			}
			created, err := category.WriteExampleRules(rc.cfg.RulesFile)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "Rules file already exists: %s\n", rc.cfg.RulesFile)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created example rules file: %s\n", rc.cfg.RulesFile)
			return nil
		},
	}
}

func newRulesFetchCmd(global *globalOptions) *cobra.Command {
	var timeout time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Download a shared rules file and install it",
		Long: `Download a rules file (default: rules_url from the config), validate it and
install it as your rules file. The previous file is kept with a .bak suffix.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := global.setup(cmd)
			if err != nil {
				return err
			}
			url := rc.cfg.RulesURL
			if len(args) == 1 {
				url = args[0]
			}
			if url == "" {
				return fmt.Errorf("no rules URL given and rules_url is not configured")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rc.logger.Debug("fetching rules", "url", url)
			data, rules, err := NewRulesFetcher(timeout).Fetch(ctx, url)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "%s: %d valid rule(s), not installed (dry run)\n", url, len(rules))
				return nil
			}
			if err := installRules(rc.cfg.RulesFile, data); err != nil {
				return err
			}
			fmt.Fprintf(out, "Installed %d rule(s) from %s into %s\n", len(rules), url, rc.cfg.RulesFile)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "download timeout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the download without installing it")
	return cmd
}
