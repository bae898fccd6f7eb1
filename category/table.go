package category

import (
	"sort"
	"strings"
)

// wrappers are leading words that run another command; categorization looks past them.
var wrappers = map[string]bool{
	"sudo": true, "doas": true, "env": true, "nohup": true, "time": true,
	"command": true, "exec": true, "builtin": true, "nice": true, "caffeinate": true,
}

// Table is an immutable, merged rule table: built-in rules first, then user rules.
// It is safe for concurrent use.
type Table struct {
	rules      []compiledRule
	byHead     map[string][]int
	patterns   []int
	categories []Category
	known      map[Category]bool
}

// Match is one rule that accepted a command, as reported by Explain.
type Match struct {
	Rule    Rule
	Winning bool
}

// Builtin returns a table holding only the built-in rules.
func Builtin() *Table {
	t, err := NewTable(nil)
	if err != nil {
		panic("category: invalid built-in rule: " + err.Error())
	}
	return t
}

// NewTable merges the built-in rules with user rules. User rules without a
// priority get UserDefaultPriority so they win over built-ins.
func NewTable(user []Rule) (*Table, error) {
	t := &Table{
		byHead: make(map[string][]int),
		known:  make(map[Category]bool),
	}

	add := func(r Rule, defaultPriority int) error {
		if !r.HasPriority && r.Priority == 0 {
			r.Priority = defaultPriority
		}
		r.HasPriority = true
		cr, err := compile(r, len(t.rules))
		if err != nil {
			return err
		}
		idx := len(t.rules)
		t.rules = append(t.rules, cr)
		for _, h := range cr.Heads {
			t.byHead[h] = append(t.byHead[h], idx)
		}
		if cr.re != nil {
			t.patterns = append(t.patterns, idx)
		}
		t.register(cr.Category)
		return nil
	}

	for _, r := range builtinRules {
		if err := add(r, BuiltinPriority); err != nil {
			return nil, err
		}
	}
	t.register(Uncategorized)
	for _, r := range user {
		if err := add(r, UserDefaultPriority); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) register(c Category) {
	if !t.known[c] {
		t.known[c] = true
		t.categories = append(t.categories, c)
	}
}

// Categories lists every known category in registration order.
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Known reports whether c was registered by a built-in or user rule.
func (t *Table) Known(c Category) bool {
	return t.known[c]
}

// Lookup normalizes name and reports whether it is a known category.
func (t *Table) Lookup(name string) (Category, bool) {
	c := Normalize(name)
	return c, t.known[c]
}

// Rules returns the merged rules in registration order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Rule
	}
	return out
}

// Categorize returns the categories of a command given its lowercase tokens and
// original text. All matching categories at the highest matching priority are
// kept, in rule registration order. The result is never empty.
func (t *Table) Categorize(tokens []string, text string) []Category {
	matched := t.match(tokens, text)
	if len(matched) == 0 {
		return []Category{Uncategorized}
	}

	best := t.rules[matched[0]].Priority
	for _, idx := range matched[1:] {
		if t.rules[idx].Priority > best {
			best = t.rules[idx].Priority
		}
	}

	out := make([]Category, 0, 2)
	for _, idx := range matched {
		r := &t.rules[idx]
		if r.Priority != best || contains(out, r.Category) {
			continue
		}
		out = append(out, r.Category)
	}
	return out
}

// Explain lists every rule that matched and marks the ones that decided the result.
func (t *Table) Explain(tokens []string, text string) []Match {
	matched := t.match(tokens, text)
	best := 0
	for i, idx := range matched {
		if i == 0 || t.rules[idx].Priority > best {
			best = t.rules[idx].Priority
		}
	}
	out := make([]Match, 0, len(matched))
	for _, idx := range matched {
		r := t.rules[idx]
		out = append(out, Match{Rule: r.Rule, Winning: r.Priority == best})
	}
	return out
}

// match returns the indices of accepting rules in registration order. Head
// rules and head patterns see both the first token and the effective head, so
// a rule naming a wrapper such as sudo still matches.
func (t *Table) match(tokens []string, text string) []int {
	var heads []string
	if len(tokens) > 0 {
		heads = append(heads, tokens[0])
	}
	if eff := EffectiveHead(tokens); eff != "" && (len(heads) == 0 || eff != heads[0]) {
		heads = append(heads, eff)
	}

	var matched []int
	add := func(idx int) {
		if !containsInt(matched, idx) {
			matched = append(matched, idx)
		}
	}
	for _, head := range heads {
		for _, idx := range t.byHead[head] {
			add(idx)
		}
	}
	for _, idx := range t.patterns {
		r := &t.rules[idx]
		if r.Target == TargetText {
			if r.matchPattern("", text) {
				add(idx)
			}
			continue
		}
		for _, head := range heads {
			if r.matchPattern(head, text) {
				add(idx)
				break
			}
		}
	}
	sort.Ints(matched)
	return matched
}

// EffectiveHead is the first token that is not a wrapper (sudo, env, ...), a
// VAR=value assignment or a wrapper's flag. It falls back to the first token.
func EffectiveHead(tokens []string) string {
	wrapped := false
	for _, tok := range tokens {
		switch {
		case wrappers[tok]:
			wrapped = true
			continue
		case isAssignment(tok):
			continue
		case wrapped && strings.HasPrefix(tok, "-"):
			continue
		}
		return tok
	}
	if len(tokens) > 0 {
		return tokens[0]
	}
	return ""
}

func isAssignment(tok string) bool {
	eq := strings.IndexByte(tok, '=')
	if eq <= 0 {
		return false
	}
	for _, c := range tok[:eq] {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func contains(cs []Category, c Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
