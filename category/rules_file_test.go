package category

import (
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseRules(t *testing.T) {
	data := []byte(`
rules:
  - name: kubernetes
    category: Kubernetes
    heads: [kubectl, helm]
  - category: secrets
    pattern: "(?i)password="
    target: text
    priority: 300
  - name: off
    category: ignored
    heads: [ls]
    enabled: false
`)
	rules, err := ParseRules(data)
	if err != nil {
		t.Fatalf("ParseRules returned error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 enabled rules, got %d", len(rules))
	}

	if rules[0].Category != "kubernetes" || !reflect.DeepEqual(rules[0].Heads, []string{"kubectl", "helm"}) {
		t.Errorf("unexpected first rule %+v", rules[0])
	}
	if rules[0].Priority != UserDefaultPriority {
		t.Errorf("expected default priority %d, got %d", UserDefaultPriority, rules[0].Priority)
	}
	if rules[1].Name != "rule #2" || rules[1].Target != TargetText || rules[1].Priority != 300 {
		t.Errorf("unexpected second rule %+v", rules[1])
	}
}

func TestParseRulesKeepsLowPriority(t *testing.T) {
	rules, err := ParseRules([]byte("rules:\n  - category: low\n    heads: [git]\n    priority: 0\n"))
	if err != nil {
		t.Fatalf("ParseRules returned error: %v", err)
	}
	table, err := NewTable(rules)
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}

	merged := table.Rules()
	if last := merged[len(merged)-1]; last.Category != "low" || last.Priority != 0 {
		t.Errorf("expected the explicit priority 0 to be kept, got %+v", last)
	}
	if got := table.Categorize([]string{"git", "status"}, "git status"); !reflect.DeepEqual(got, []Category{VersionControl}) {
		t.Errorf("expected the built-in rule to win, got %v", got)
	}
}

func TestParseRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "rules: [\n"},
		{"invalid pattern", "rules:\n  - category: x\n    pattern: \"(\"\n"},
		{"missing category", "rules:\n  - heads: [ls]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRules([]byte(tt.data)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestWriteExampleRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rules.yaml")

	created, err := WriteExampleRules(path)
	if err != nil || !created {
		t.Fatalf("expected file to be created, got created=%v err=%v", created, err)
	}

	created, err = WriteExampleRules(path)
	if err != nil || created {
		t.Errorf("expected existing file to be left alone, got created=%v err=%v", created, err)
	}

	rules, err := LoadRulesFile(path)
	if err != nil {
		t.Fatalf("LoadRulesFile returned error: %v", err)
	}
	if len(rules) != 2 {
		t.Errorf("expected the example file to carry 2 enabled rules, got %d", len(rules))
	}
	if _, err := NewTable(rules); err != nil {
		t.Errorf("example rules do not build a table: %v", err)
	}
}

func TestLoadRulesFileMissing(t *testing.T) {
	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}
