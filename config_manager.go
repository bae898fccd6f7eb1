package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the settings for one run. Command-line flags override it and it
// overrides the built-in defaults.
type Config struct {
	Shell            string `mapstructure:"shell" yaml:"shell" json:"shell"`
	HistoryFile      string `mapstructure:"history_file" yaml:"history_file" json:"history_file"`
	RulesFile        string `mapstructure:"rules_file" yaml:"rules_file" json:"rules_file"`
	RulesURL         string `mapstructure:"rules_url" yaml:"rules_url" json:"rules_url"`
	TopK             int    `mapstructure:"top_k" yaml:"top_k" json:"top_k"`
	Timezone         string `mapstructure:"timezone" yaml:"timezone" json:"timezone"`
	Output           string `mapstructure:"output" yaml:"output" json:"output"`
	LogLevel         string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	InteractiveLimit int    `mapstructure:"interactive_limit" yaml:"interactive_limit" json:"interactive_limit"`
}

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// configDir returns ~/.config/past, honouring XDG_CONFIG_HOME
func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
	}
	return filepath.Join(getEnvString("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config")), "past")
}

// DefaultConfigPath is where the config file is looked up when --config is not given
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultRulesPath is where user category rules are looked up
func DefaultRulesPath() string {
	return filepath.Join(configDir(), "rules.yaml")
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		Shell:            "",
		HistoryFile:      "",
		RulesFile:        DefaultRulesPath(),
		RulesURL:         "",
		TopK:             10,
		Timezone:         "local",
		Output:           OutputText,
		LogLevel:         "warn",
		InteractiveLimit: 20,
	}
}

// LoadConfig reads the config file at path (or the default path when empty) and
// applies PAST_* environment overrides. A missing default file is not an error; a
// missing explicit file is. It returns the path that was read, if any.
func LoadConfig(path string) (*Config, string, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.TrimSuffix(envVarPrefix, "_"))
	v.AutomaticEnv()

	// defaults make every key known to viper so env overrides reach Unmarshal
	v.SetDefault("shell", cfg.Shell)
	v.SetDefault("history_file", cfg.HistoryFile)
	v.SetDefault("rules_file", cfg.RulesFile)
	v.SetDefault("rules_url", cfg.RulesURL)
	v.SetDefault("top_k", cfg.TopK)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("interactive_limit", cfg.InteractiveLimit)

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	used := ""
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		used = path
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("failed to access config file: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, used, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("invalid output %q: must be %s or %s", c.Output, OutputText, OutputJSON)
	}
	if c.TopK < 0 {
		return fmt.Errorf("invalid top_k %d: must not be negative", c.TopK)
	}
	if c.InteractiveLimit < 0 {
		return fmt.Errorf("invalid interactive_limit %d: must not be negative", c.InteractiveLimit)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone used for day buckets and display
func (c *Config) Location() (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(c.Timezone)) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Marshal renders the config as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

const configHeader = `# past configuration
# Every key can be overridden with a PAST_<KEY> environment variable,
# e.g. PAST_TOP_K=20 or PAST_SHELL=zsh.

`

// WriteDefaultConfig writes the default settings to path unless a file is already there
func WriteDefaultConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := DefaultConfig().Marshal()
	if err != nil {
		return false, fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
