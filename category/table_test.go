package category

import (
	"reflect"
	"strings"
	"testing"
)

func tokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func TestBuiltinCategorize(t *testing.T) {
	table := Builtin()

	tests := []struct {
		command string
		want    []Category
	}{
		{"ls -la", []Category{Navigation}},
		{"git status", []Category{VersionControl}},
		{"cd /tmp", []Category{Navigation}},
		{"sudo apt-get install jq", []Category{PackageManagement}},
		{"env GOOS=linux go build ./...", []Category{Build}},
		{"FOO=1 make test", []Category{Build}},
		{"sudo -E docker ps", []Category{Containers}},
		{"./deploy.sh prod", []Category{Execution, Scripting}},
		{"/usr/bin/env", []Category{Execution}},
		{"vim deploy.sh", []Category{Editing}},
		{"nohup python serve.py", []Category{ProcessManagement, Scripting}},
		{"sudo nohup ./run.sh", []Category{Execution, Scripting}},
		{"frobnicate --all", []Category{Uncategorized}},
		{"", []Category{Uncategorized}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got := table.Categorize(tokens(tt.command), tt.command)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestUserRulesOverrideBuiltins(t *testing.T) {
	table, err := NewTable([]Rule{
		{Name: "kube", Category: "Kubernetes", Heads: []string{"kubectl"}},
		{Name: "danger", Category: "destructive", Pattern: `rm\s+-rf`, Target: TargetText, Priority: 5},
	})
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}

	got := table.Categorize(tokens("kubectl get pods"), "kubectl get pods")
	if !reflect.DeepEqual(got, []Category{"kubernetes"}) {
		t.Errorf("expected user rule to win, got %v", got)
	}

	// lower priority than the built-in file-operations rule
	got = table.Categorize(tokens("rm -rf build"), "rm -rf build")
	if !reflect.DeepEqual(got, []Category{FileOperations}) {
		t.Errorf("expected built-in rule to win, got %v", got)
	}

	if !table.Known("kubernetes") || !table.Known("destructive") {
		t.Errorf("expected user categories to be registered")
	}
	cats := table.Categories()
	if cats[len(cats)-1] != "destructive" {
		t.Errorf("expected user categories after built-ins, got %v", cats)
	}
}

func TestUserRulesOnWrapperHeads(t *testing.T) {
	table, err := NewTable([]Rule{
		{Name: "admin", Category: "admin", Heads: []string{"sudo"}},
		{Name: "timed", Category: "timed", Pattern: `^time$`},
	})
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}

	tests := []struct {
		command string
		want    []Category
	}{
		{"sudo apt update", []Category{"admin"}},
		{"sudo", []Category{"admin"}},
		{"time make", []Category{"timed"}},
		{"apt update", []Category{PackageManagement}},
	}
	for _, tt := range tests {
		if got := table.Categorize(tokens(tt.command), tt.command); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Categorize(%q) = %v, want %v", tt.command, got, tt.want)
		}
	}

	// the wrapped command's rule still matches, it just loses on priority
	matches := table.Explain(tokens("sudo apt update"), "sudo apt update")
	if len(matches) != 2 || matches[0].Rule.Category != PackageManagement || matches[0].Winning || !matches[1].Winning {
		t.Errorf("unexpected matches %+v", matches)
	}
}

func TestExplicitPriority(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want []Category
	}{
		{"unset defaults above built-ins", Rule{Category: "mine", Heads: []string{"git"}}, []Category{"mine"}},
		{"explicit zero stays zero", Rule{Category: "mine", Heads: []string{"git"}, HasPriority: true}, []Category{VersionControl}},
		{"equal to built-ins ties", Rule{Category: "mine", Heads: []string{"git"}, Priority: BuiltinPriority}, []Category{VersionControl, "mine"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable([]Rule{tt.rule})
			if err != nil {
				t.Fatalf("NewTable returned error: %v", err)
			}
			if got := table.Categorize(tokens("git status"), "git status"); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewTableRejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"no category", Rule{Heads: []string{"x"}}},
		{"no heads or pattern", Rule{Category: "x"}},
		{"bad pattern", Rule{Category: "x", Pattern: "("}},
		{"bad target", Rule{Category: "x", Pattern: "x", Target: "path"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable([]Rule{tt.rule}); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestBuiltinRulesNotMutated(t *testing.T) {
	before := append([]string(nil), builtinRules[11].Heads...)
	Builtin()
	Builtin()
	if !reflect.DeepEqual(before, builtinRules[11].Heads) {
		t.Errorf("built-in heads changed: %v", builtinRules[11].Heads)
	}
}

func TestLookup(t *testing.T) {
	table := Builtin()
	tests := []struct {
		name  string
		want  Category
		known bool
	}{
		{"version-control", VersionControl, true},
		{"  Version Control ", VersionControl, true},
		{"uncategorized", Uncategorized, true},
		{"astrology", "astrology", false},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.name)
		if got != tt.want || ok != tt.known {
			t.Errorf("Lookup(%q) = %q, %v; expected %q, %v", tt.name, got, ok, tt.want, tt.known)
		}
	}
}

func TestExplain(t *testing.T) {
	table, err := NewTable([]Rule{{Name: "deploys", Category: "deploy", Pattern: `deploy`, Target: TargetText}})
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}
	matches := table.Explain(tokens("./deploy.sh"), "./deploy.sh")
	if len(matches) != 3 {
		t.Fatalf("expected 3 matching rules, got %d", len(matches))
	}
	for _, m := range matches {
		want := m.Rule.Category == "deploy"
		if m.Winning != want {
			t.Errorf("rule %q: expected winning=%v", m.Rule.Name, want)
		}
	}
}

func TestEffectiveHead(t *testing.T) {
	tests := map[string]string{
		"git push":           "git",
		"sudo git push":      "git",
		"sudo -E vim a.txt":  "vim",
		"a=1 b=2 make":       "make",
		"nohup":              "nohup",
		"time nice python x": "python",
		"-v ls":              "-v",
	}
	for in, want := range tests {
		if got := EffectiveHead(tokens(in)); got != want {
			t.Errorf("EffectiveHead(%q) = %q, want %q", in, got, want)
		}
	}
}
