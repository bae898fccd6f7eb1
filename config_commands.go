package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(newConfigShowCmd(global), newConfigInitCmd(global))
	return cmd
}

func newConfigShowCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := global.setup(cmd)
			if err != nil {
				return err
			}
			if rc.reporter.json {
				return rc.reporter.writeJSON(struct {
					Path   string   `json:"path,omitempty"`
					Config *Config  `json:"config"`
					Env    []string `json:"env,omitempty"`
				}{rc.cfgPath, rc.cfg, listPastEnvVars()})
			}

			out := cmd.OutOrStdout()
			if rc.cfgPath != "" {
				fmt.Fprintf(out, "# loaded from %s\n", rc.cfgPath)
			} else {
				fmt.Fprintf(out, "# no config file (looked for %s)\n", DefaultConfigPath())
			}
			for _, env := range listPastEnvVars() {
				fmt.Fprintf(out, "# override: %s\n", env)
			}
			data, err := rc.cfg.Marshal()
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func newConfigInitCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := global.configPath
			if path == "" {
				path = DefaultConfigPath()
			}
			created, err := WriteDefaultConfig(path)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
			return nil
		},
	}
}
