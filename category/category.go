package category

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is a semantic tag for a command. Categories are data: user rule files
// may introduce new ones.
type Category string

const (
	Navigation        Category = "filesystem-navigation"
	FileOperations    Category = "file-operations"
	Editing           Category = "editing"
	TextProcessing    Category = "text-processing"
	VersionControl    Category = "version-control"
	PackageManagement Category = "package-management"
	ProcessManagement Category = "process-management"
	Networking        Category = "networking"
	Containers        Category = "containers"
	Databases         Category = "databases"
	Build             Category = "build"
	Scripting         Category = "scripting"
	Execution         Category = "execution"
	ShellBuiltins     Category = "shell-builtins"
	Uncategorized     Category = "uncategorized"
)

// Priorities used when a rule does not say otherwise.
const (
	BuiltinPriority     = 10
	UserDefaultPriority = 100
)

// Target selects what a rule pattern is matched against.
type Target string

const (
	TargetHead Target = "head"
	TargetText Target = "text"
)

// Normalize canonicalizes a category name: trimmed, lowercase, spaces as dashes.
func Normalize(name string) Category {
	name = strings.ToLower(strings.TrimSpace(name))
	return Category(strings.Join(strings.Fields(name), "-"))
}

// Rule maps commands to a category. A rule matches when the head token is one of
// Heads, or when Pattern matches the head token (Target head) or the whole
// command text (Target text).
type Rule struct {
	Category    Category
	Heads       []string
	Pattern     string
	Target      Target
	Priority    int
	HasPriority bool // Priority was set explicitly; a zero is kept
	Name        string
}

type compiledRule struct {
	Rule
	re    *regexp.Regexp
	order int
}

func compile(r Rule, order int) (compiledRule, error) {
	r.Category = Normalize(string(r.Category))
	if r.Category == "" {
		return compiledRule{}, fmt.Errorf("rule %q: category is required", r.Name)
	}
	if len(r.Heads) == 0 && r.Pattern == "" {
		return compiledRule{}, fmt.Errorf("rule %q: needs heads or a pattern", r.Name)
	}
	if r.Target == "" {
		r.Target = TargetHead
	}
	if r.Target != TargetHead && r.Target != TargetText {
		return compiledRule{}, fmt.Errorf("rule %q: unknown target %q", r.Name, r.Target)
	}
	heads := make([]string, 0, len(r.Heads))
	for _, h := range r.Heads {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			heads = append(heads, h)
		}
	}
	r.Heads = heads

	cr := compiledRule{Rule: r, order: order}
	if r.Pattern != "" {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return compiledRule{}, fmt.Errorf("rule %q: invalid pattern: %w", r.Name, err)
		}
		cr.re = re
	}
	return cr, nil
}

func (r *compiledRule) matchPattern(head, text string) bool {
	if r.re == nil {
		return false
	}
	if r.Target == TargetText {
		return r.re.MatchString(text)
	}
	return r.re.MatchString(head)
}
