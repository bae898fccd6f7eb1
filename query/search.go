package query

import (
	"strings"

	"past/category"
	"past/record"
)

// SearchCategories returns the records in any of the named categories, in id
// order. A name that no rule defines fails with an *UnknownCategoryError.
func (s *Session) SearchCategories(names ...string) ([]record.CommandRecord, error) {
	ids, err := s.CategoryIDs(names...)
	if err != nil {
		return nil, err
	}
	return s.resolve(ids), nil
}

// CategoryIDs is SearchCategories returning record ids.
func (s *Session) CategoryIDs(names ...string) ([]int, error) {
	lists := make([][]int, 0, len(names))
	seen := make(map[category.Category]bool, len(names))
	for _, name := range names {
		c, ok := s.table.Lookup(name)
		if !ok {
			return nil, &UnknownCategoryError{Name: name}
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		lists = append(lists, s.index.Category(c))
	}
	return union(lists), nil
}

// SearchKeyword returns records containing keyword as a whole token, or, when no
// token matches exactly, records whose text contains it case-insensitively.
// Results are in id order. An empty keyword matches every record.
func (s *Session) SearchKeyword(keyword string) []record.CommandRecord {
	return s.resolve(s.KeywordIDs(keyword))
}

// KeywordIDs is SearchKeyword returning record ids. The returned slice is owned
// by the caller.
func (s *Session) KeywordIDs(keyword string) []int {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		ids := make([]int, len(s.records))
		for i := range ids {
			ids[i] = i
		}
		return ids
	}

	if hits := s.index.Token(needle); len(hits) > 0 {
		out := make([]int, len(hits))
		copy(out, hits)
		return out
	}

	var out []int
	for id, text := range s.lower {
		if strings.Contains(text, needle) {
			out = append(out, id)
		}
	}
	return out
}

// union merges ascending id lists into one ascending list without duplicates.
func union(lists [][]int) []int {
	switch len(lists) {
	case 0:
		return nil
	case 1:
		out := make([]int, len(lists[0]))
		copy(out, lists[0])
		return out
	}

	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]int, 0, total)
	pos := make([]int, len(lists))
	for {
		next, from := -1, -1
		for i, l := range lists {
			if pos[i] < len(l) && (next < 0 || l[pos[i]] < next) {
				next, from = l[pos[i]], i
			}
		}
		if from < 0 {
			return out
		}
		if n := len(out); n == 0 || out[n-1] != next {
			out = append(out, next)
		}
		pos[from]++
	}
}
