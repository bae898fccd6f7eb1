package query

import (
	"sort"
	"strings"
	"time"

	"past/category"
	"past/index"
)

// Level selects how much Statistics computes.
type Level int

const (
	Brief Level = iota
	Detailed
)

// DefaultTopK is the number of head tokens a detailed report lists.
const DefaultTopK = 10

// CategoryCount is the number of records tagged with one category.
type CategoryCount struct {
	Category category.Category `json:"category"`
	Count    int               `json:"count"`
}

// DayCount is the number of records in one day bucket.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// TextCount is how often a command text or keyword occurs. FirstID is the
// first record it appears in and breaks ties.
type TextCount struct {
	Text    string `json:"text"`
	Count   int    `json:"count"`
	FirstID int    `json:"first_id"`
}

// Stats is the result of a statistics query. Detailed-only fields are empty for Brief.
type Stats struct {
	Level      Level            `json:"-"`
	Total      int              `json:"total_commands"`
	Unique     int              `json:"unique_commands"`
	Categories []CategoryCount  `json:"categories"`
	TopHead    *index.HeadCount `json:"top_head,omitempty"`
	Warnings   int              `json:"warnings"`

	Days           []DayCount        `json:"days,omitempty"`
	TopHeads       []index.HeadCount `json:"top_heads,omitempty"`
	TopCommands    []TextCount       `json:"top_commands,omitempty"`
	TopKeywords    []TextCount       `json:"top_keywords,omitempty"`
	Keywords       int               `json:"total_keywords,omitempty"`
	UniqueKeywords int               `json:"unique_keywords,omitempty"`
	Timestamped    int               `json:"timestamped,omitempty"`
	First          *time.Time        `json:"first,omitempty"`
	Last           *time.Time        `json:"last,omitempty"`
}

// Statistics summarizes the session. topK <= 0 means DefaultTopK.
func (s *Session) Statistics(level Level, topK int) Stats {
	if topK <= 0 {
		topK = DefaultTopK
	}

	st := Stats{
		Level:    level,
		Total:    len(s.records),
		Warnings: len(s.warnings),
	}

	unique := make(map[string]struct{}, len(s.records))
	for _, r := range s.records {
		unique[r.Text] = struct{}{}
	}
	st.Unique = len(unique)

	for _, c := range s.table.Categories() {
		if n := len(s.index.Category(c)); n > 0 {
			st.Categories = append(st.Categories, CategoryCount{Category: c, Count: n})
		}
	}
	sortCategoryCounts(st.Categories)

	if heads := s.index.TopHeads(1); len(heads) == 1 {
		st.TopHead = &heads[0]
	}

	if level == Brief {
		return st
	}

	for _, day := range s.index.Days() {
		st.Days = append(st.Days, DayCount{Day: day, Count: len(s.index.Day(day))})
	}
	st.TopHeads = s.index.TopHeads(topK)

	commands := newCounter()
	words := newCounter()
	for _, r := range s.records {
		commands.add(r.Text, r.ID)
		for _, tok := range r.Tokens {
			word, ok := keyword(tok)
			if !ok {
				continue
			}
			st.Keywords++
			words.add(word, r.ID)
		}
		if r.TimeKnown() {
			st.Timestamped++
			t := r.ExecutedAt
			if st.First == nil || t.Before(*st.First) {
				st.First = &t
			}
			if st.Last == nil || t.After(*st.Last) {
				st.Last = &t
			}
		}
	}
	st.UniqueKeywords = len(words.counts)
	st.TopCommands = commands.top(topK)
	st.TopKeywords = words.top(topK)
	return st
}

// counter tallies strings in first-seen order.
type counter struct {
	pos    map[string]int
	counts []TextCount
}

func newCounter() *counter {
	return &counter{pos: make(map[string]int)}
}

func (c *counter) add(text string, id int) {
	if i, ok := c.pos[text]; ok {
		c.counts[i].Count++
		return
	}
	c.pos[text] = len(c.counts)
	c.counts = append(c.counts, TextCount{Text: text, Count: 1, FirstID: id})
}

// top returns at most k entries by descending count, ties by first occurrence.
func (c *counter) top(k int) []TextCount {
	out := make([]TextCount, len(c.counts))
	copy(out, c.counts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// sortCategoryCounts orders by count descending; the input is in registration
// order, which the stable insertion sort keeps for ties.
func sortCategoryCounts(cs []CategoryCount) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].Count > cs[j-1].Count; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// keyword strips quotes from a token and rejects flags and bare numbers.
func keyword(tok string) (string, bool) {
	if strings.HasPrefix(tok, "-") {
		return "", false
	}
	tok = strings.Trim(tok, `"'`)
	for _, c := range tok {
		if c < '0' || c > '9' {
			return tok, true
		}
	}
	return "", false
}
