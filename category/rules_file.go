package category

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileRule is the on-disk form of a user rule.
type FileRule struct {
	Name     string   `yaml:"name,omitempty"`
	Category string   `yaml:"category"`
	Heads    []string `yaml:"heads,omitempty"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Target   string   `yaml:"target,omitempty"`
	Priority *int     `yaml:"priority,omitempty"`
	Enabled  *bool    `yaml:"enabled,omitempty"`
}

// RuleSet is the top level of a rules file.
type RuleSet struct {
	Rules []FileRule `yaml:"rules"`
}

const exampleRules = `# past category rules
#
# Each rule assigns a category to commands. Fields:
#   - category: category name (new names are registered automatically)
#   - heads:    list of command names matched against the first word
#   - pattern:  regular expression, matched against the first word or the
#               whole command depending on target
#   - target:   head (default) or text
#   - priority: higher wins; defaults to 100, above every built-in rule (10)
#   - enabled:  (optional) set to false to keep a rule without using it

rules:
  - name: kubernetes
    category: kubernetes
    heads: [kubectl, k9s, helm, kubectx, kubens]

  - name: terraform
    category: infrastructure
    heads: [terraform, tofu, pulumi, ansible, ansible-playbook]

  - name: destructive
    category: destructive
    pattern: "\\brm\\s+-[a-z]*r[a-z]*f|\\bmkfs\\b|\\bdd\\s+if="
    target: text
    priority: 200
    enabled: false
`

// ParseRules decodes a YAML rules document into rules ready for NewTable.
func ParseRules(data []byte) ([]Rule, error) {
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	rules := make([]Rule, 0, len(set.Rules))
	for i, fr := range set.Rules {
		if fr.Enabled != nil && !*fr.Enabled {
			continue
		}
		name := fr.Name
		if name == "" {
			name = fmt.Sprintf("rule #%d", i+1)
		}
		r := Rule{
			Name:     name,
			Category: Normalize(fr.Category),
			Heads:    fr.Heads,
			Pattern:  fr.Pattern,
			Target:   Target(strings.ToLower(fr.Target)),
			Priority: UserDefaultPriority,
		}
		if fr.Priority != nil {
			r.Priority = *fr.Priority
		}
		r.HasPriority = true
		// validate early so the error names the file position
		if _, err := compile(r, i); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadRulesFile reads a rules file. "~/" is expanded to the home directory.
func LoadRulesFile(path string) ([]Rule, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// WriteExampleRules creates a commented example rules file if none exists.
func WriteExampleRules(path string) (bool, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleRules), 0644); err != nil {
		return false, fmt.Errorf("failed to write example rules: %w", err)
	}
	return true, nil
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
