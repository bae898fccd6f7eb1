package index

import (
	"sort"

	"past/category"
	"past/record"
)

// UnknownDay is the time bucket for records without a timestamp.
const UnknownDay = "unknown"

const dayLayout = "2006-01-02"

// HeadCount is how often a head token starts a command.
type HeadCount struct {
	Token   string `json:"token"`
	Count   int    `json:"count"`
	FirstID int    `json:"first_id"`
}

// Index holds the derived lookups for one loaded history. Every id list is in
// ascending order. An Index is never modified after Build.
type Index struct {
	byCategory map[category.Category][]int
	byToken    map[string][]int
	byDay      map[string][]int
	days       []string
	heads      []HeadCount
}

// Build derives all lookups from records in a single pass over their tokens.
func Build(records []record.CommandRecord) *Index {
	ix := &Index{
		byCategory: make(map[category.Category][]int),
		byToken:    make(map[string][]int),
		byDay:      make(map[string][]int),
	}
	headPos := make(map[string]int)

	for _, r := range records {
		for _, c := range r.Categories {
			ix.byCategory[c] = appendID(ix.byCategory[c], r.ID)
		}
		for _, tok := range r.Tokens {
			ix.byToken[tok] = appendID(ix.byToken[tok], r.ID)
		}

		day := DayKey(r)
		ix.byDay[day] = append(ix.byDay[day], r.ID)

		if head := r.Head(); head != "" {
			if pos, ok := headPos[head]; ok {
				ix.heads[pos].Count++
			} else {
				headPos[head] = len(ix.heads)
				ix.heads = append(ix.heads, HeadCount{Token: head, Count: 1, FirstID: r.ID})
			}
		}
	}

	for day := range ix.byDay {
		ix.days = append(ix.days, day)
	}
	sortDays(ix.days)

	sort.SliceStable(ix.heads, func(i, j int) bool {
		if ix.heads[i].Count != ix.heads[j].Count {
			return ix.heads[i].Count > ix.heads[j].Count
		}
		return ix.heads[i].FirstID < ix.heads[j].FirstID
	})
	return ix
}

// appendID adds id unless it is already the last element; records are visited
// in id order so this keeps lists sorted and free of duplicates.
func appendID(ids []int, id int) []int {
	if n := len(ids); n > 0 && ids[n-1] == id {
		return ids
	}
	return append(ids, id)
}

// DayKey is the calendar-day bucket of a record in its own location.
func DayKey(r record.CommandRecord) string {
	if !r.TimeKnown() {
		return UnknownDay
	}
	return r.ExecutedAt.Format(dayLayout)
}

// sortDays orders buckets chronologically with the unknown bucket last.
func sortDays(days []string) {
	sort.Slice(days, func(i, j int) bool {
		if days[i] == UnknownDay {
			return false
		}
		if days[j] == UnknownDay {
			return true
		}
		return days[i] < days[j]
	})
}

// Category returns the ids of records tagged c. The slice must not be modified.
func (ix *Index) Category(c category.Category) []int {
	return ix.byCategory[c]
}

// Token returns the ids of records containing tok exactly. The slice must not be modified.
func (ix *Index) Token(tok string) []int {
	return ix.byToken[tok]
}

// Day returns the ids of records in a day bucket. The slice must not be modified.
func (ix *Index) Day(day string) []int {
	return ix.byDay[day]
}

// Days lists the day buckets chronologically, "unknown" last.
func (ix *Index) Days() []string {
	out := make([]string, len(ix.days))
	copy(out, ix.days)
	return out
}

// Heads returns head tokens by descending count, ties by first occurrence.
func (ix *Index) Heads() []HeadCount {
	out := make([]HeadCount, len(ix.heads))
	copy(out, ix.heads)
	return out
}

// TopHeads returns at most k entries of Heads.
func (ix *Index) TopHeads(k int) []HeadCount {
	if k < 0 || k > len(ix.heads) {
		k = len(ix.heads)
	}
	out := make([]HeadCount, k)
	copy(out, ix.heads[:k])
	return out
}

// TokenCount is the number of distinct tokens.
func (ix *Index) TokenCount() int {
	return len(ix.byToken)
}

// Categories lists the categories that have at least one record.
func (ix *Index) Categories() []category.Category {
	out := make([]category.Category, 0, len(ix.byCategory))
	for c := range ix.byCategory {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
