package query

import (
	"errors"
	"reflect"
	"testing"
)

func TestSearchKeyword(t *testing.T) {
	s := sessionOf(t, "git status", "git commit -m x", "ls", "vim config.yaml", "GIT log")

	tests := []struct {
		keyword string
		want    []int
	}{
		{"git", []int{0, 1, 4}},
		{"GIT", []int{0, 1, 4}},
		{"confi", []int{3}},
		{"commit -m", []int{1}},
		{"nothing", nil},
		{"", []int{0, 1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got := s.KeywordIDs(tt.keyword)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSearchKeywordOrder(t *testing.T) {
	s := sessionOf(t, "git status", "git commit -m x", "ls")
	got := s.SearchKeyword("git")
	if len(got) != 2 || got[0].ID != 0 || got[1].ID != 1 {
		t.Errorf("expected ids 0 and 1 in order, got %v", got)
	}
}

func TestKeywordIDsAreOwnedByCaller(t *testing.T) {
	s := sessionOf(t, "git status", "git log")
	ids := s.KeywordIDs("git")
	ids[0] = 99
	if again := s.KeywordIDs("git"); again[0] != 0 {
		t.Errorf("index was modified through a returned slice: %v", again)
	}
}

func TestHeadTokensAreFindable(t *testing.T) {
	s := sessionOf(t, "docker ps", "make build", "./run.sh", "cd ..")
	for _, r := range s.Records() {
		found := false
		for _, hit := range s.SearchKeyword(r.Head()) {
			if hit.ID == r.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("record %d not found by its head token %q", r.ID, r.Head())
		}
	}
}

func TestSearchCategoriesUnion(t *testing.T) {
	s := sessionOf(t, "ls", "git status", "cd /tmp", "make", "git push", "./deploy.sh")

	got, err := s.CategoryIDs("version-control", "filesystem-navigation", "version-control")
	if err != nil {
		t.Fatalf("CategoryIDs returned error: %v", err)
	}
	if want := []int{0, 1, 2, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// every record lies in at least one category, so all categories cover everything
	var names []string
	for _, c := range s.Rules().Categories() {
		names = append(names, string(c))
	}
	all, err := s.CategoryIDs(names...)
	if err != nil {
		t.Fatalf("CategoryIDs returned error: %v", err)
	}
	if len(all) != s.Len() {
		t.Errorf("expected union of all categories to cover %d records, got %v", s.Len(), all)
	}

	scripts, err := s.CategoryIDs("execution")
	if err != nil || !reflect.DeepEqual(scripts, []int{5}) {
		t.Errorf("expected ./deploy.sh under execution, got %v (%v)", scripts, err)
	}
	scripts, err = s.CategoryIDs("scripting")
	if err != nil || !reflect.DeepEqual(scripts, []int{5}) {
		t.Errorf("expected ./deploy.sh under scripting, got %v (%v)", scripts, err)
	}
}

func TestSearchUnknownCategory(t *testing.T) {
	s := sessionOf(t, "ls")
	got, err := s.SearchCategories("filesystem-navigation", "astrology")
	if got != nil {
		t.Errorf("expected no results, got %v", got)
	}
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	var uce *UnknownCategoryError
	if !errors.As(err, &uce) || uce.Name != "astrology" {
		t.Errorf("expected the error to name the category, got %v", err)
	}
}

func TestKnownButEmptyCategory(t *testing.T) {
	s := sessionOf(t, "ls")
	got, err := s.SearchCategories("databases")
	if err != nil || len(got) != 0 {
		t.Errorf("expected an empty result without error, got %v (%v)", got, err)
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	s := sessionOf(t, "git status", "ls", "git push")
	first := s.KeywordIDs("git")
	second := s.KeywordIDs("git")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("keyword search changed between calls: %v vs %v", first, second)
	}
	a := s.Statistics(Detailed, 3)
	b := s.Statistics(Detailed, 3)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("statistics changed between calls")
	}
}

func TestUnion(t *testing.T) {
	tests := []struct {
		lists [][]int
		want  []int
	}{
		{nil, nil},
		{[][]int{{1, 3}}, []int{1, 3}},
		{[][]int{{1, 3, 5}, {2, 3, 6}, {}}, []int{1, 2, 3, 5, 6}},
		{[][]int{{4}, {4}, {4}}, []int{4}},
	}
	for _, tt := range tests {
		got := union(tt.lists)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("union(%v) = %v, want %v", tt.lists, got, tt.want)
		}
	}
}
