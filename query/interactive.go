package query

import "past/record"

// Incremental drives a live search UI: the UI calls Update on every edit of the
// query and renders the returned records. It never re-parses or re-indexes, and
// it belongs to a single UI loop.
type Incremental struct {
	session *Session
	query   string
	ids     []int
	fresh   bool
}

// Incremental starts an interactive search over the session.
func (s *Session) Incremental() *Incremental {
	return &Incremental{session: s}
}

// Update sets the live query and returns the matching records in id order.
func (in *Incremental) Update(query string) []record.CommandRecord {
	in.refresh(query)
	return in.session.resolve(in.ids)
}

// Count returns the number of matches for query without resolving records.
func (in *Incremental) Count(query string) int {
	in.refresh(query)
	return len(in.ids)
}

func (in *Incremental) refresh(query string) {
	if in.fresh && query == in.query {
		return
	}
	in.query = query
	in.ids = in.session.KeywordIDs(query)
	in.fresh = true
}

// Query is the current live query.
func (in *Incremental) Query() string { return in.query }

// Recent returns up to n of the current matches, newest first, with repeated
// command texts shown once. n <= 0 means no limit.
func (in *Incremental) Recent(n int) []record.CommandRecord {
	in.refresh(in.query)
	seen := make(map[string]bool)
	var out []record.CommandRecord
	for i := len(in.ids) - 1; i >= 0; i-- {
		r := in.session.records[in.ids[i]]
		if seen[r.Text] {
			continue
		}
		seen[r.Text] = true
		out = append(out, r)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// Select returns the i-th entry (0-based) of Recent(n).
func (in *Incremental) Select(i, n int) (record.CommandRecord, bool) {
	recent := in.Recent(n)
	if i < 0 || i >= len(recent) {
		return record.CommandRecord{}, false
	}
	return recent[i], true
}
