package query

import "testing"

func TestIncrementalUpdate(t *testing.T) {
	s := sessionOf(t, "git status", "ls", "git push", "git status", "grep foo")
	inc := s.Incremental()

	steps := []struct {
		query string
		count int
	}{
		{"", 5},
		{"g", 4},
		{"gi", 3},
		{"git", 3},
		{"git p", 1},
		{"git", 3},
	}
	for _, step := range steps {
		if got := inc.Count(step.query); got != step.count {
			t.Errorf("Count(%q) = %d, want %d", step.query, got, step.count)
		}
		if got := len(inc.Update(step.query)); got != step.count {
			t.Errorf("Update(%q) returned %d records, want %d", step.query, got, step.count)
		}
	}
	if inc.Query() != "git" {
		t.Errorf("expected live query git, got %q", inc.Query())
	}
}

func TestIncrementalRecent(t *testing.T) {
	s := sessionOf(t, "git status", "ls", "git push", "git status", "grep foo")
	inc := s.Incremental()
	inc.Update("git")

	recent := inc.Recent(0)
	if got := texts(recent); !equalStrings(got, []string{"git status", "git push"}) {
		t.Errorf("expected newest-first unique matches, got %v", got)
	}
	if recent[0].ID != 3 {
		t.Errorf("expected the newest occurrence, got id %d", recent[0].ID)
	}

	if got := inc.Recent(1); len(got) != 1 {
		t.Errorf("expected limit to apply, got %v", texts(got))
	}

	r, ok := inc.Select(1, 10)
	if !ok || r.Text != "git push" {
		t.Errorf("expected to select git push, got %q (%v)", r.Text, ok)
	}
	if _, ok := inc.Select(2, 10); ok {
		t.Errorf("expected out-of-range selection to fail")
	}
}
