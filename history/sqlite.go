package history

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteMagic = []byte("SQLite format 3\x00")

// SQLiteParser reads history databases kept by tools such as atuin and fh:
// a `history` table with at least a command column.
type SQLiteParser struct{}

func (SQLiteParser) Format() Format { return FormatSQLite }

func (SQLiteParser) Sniff(s Sample) bool {
	return bytes.HasPrefix(s.Head, sqliteMagic)
}

func (SQLiteParser) Accepts(line string) bool {
	return strings.HasPrefix(line, string(sqliteMagic[:len(sqliteMagic)-1]))
}

// historyColumns maps the columns we understand to the names the known tools use.
type historyColumns struct {
	command   string
	timestamp string
	duration  string
	durUnit   time.Duration
	exit      string
	deleted   string
}

func (SQLiteParser) Parse(content []byte) ([]RawEntry, []Warning, error) {
	if !bytes.HasPrefix(content, sqliteMagic) {
		return nil, nil, corrupt(FormatSQLite, "missing database header")
	}

	// the driver needs a file; the caller only hands us bytes
	tmp, err := os.CreateTemp("", "past-history-*.db")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stage history database: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, nil, fmt.Errorf("failed to stage history database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to stage history database: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+tmp.Name()+"?mode=ro")
	if err != nil {
		return nil, nil, corrupt(FormatSQLite, err.Error())
	}
	defer db.Close()

	cols, err := discoverColumns(db)
	if err != nil {
		return nil, nil, corrupt(FormatSQLite, err.Error())
	}
	return readHistoryRows(db, cols)
}

func discoverColumns(db *sql.DB) (historyColumns, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info('history')`)
	if err != nil {
		return historyColumns{}, err
	}
	defer rows.Close()

	present := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return historyColumns{}, err
		}
		present[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return historyColumns{}, err
	}

	pick := func(names ...string) string {
		for _, n := range names {
			if present[n] {
				return n
			}
		}
		return ""
	}

	cols := historyColumns{
		command:   pick("command", "cmd"),
		timestamp: pick("timestamp", "when", "time", "start_time"),
		exit:      pick("exit", "exit_code", "status"),
		deleted:   pick("deleted_at"),
	}
	if c := pick("duration_ms"); c != "" {
		cols.duration, cols.durUnit = c, time.Millisecond
	} else if c := pick("duration"); c != "" {
		// atuin stores nanoseconds
		cols.duration, cols.durUnit = c, time.Nanosecond
	}
	if cols.command == "" {
		return historyColumns{}, fmt.Errorf("no history table with a command column")
	}
	return cols, nil
}

func readHistoryRows(db *sql.DB, cols historyColumns) ([]RawEntry, []Warning, error) {
	// "when" and friends are keywords, so every column is quoted
	selected := []string{quoteIdent(cols.command)}
	for _, c := range []string{cols.timestamp, cols.duration, cols.exit} {
		if c == "" {
			selected = append(selected, "NULL")
			continue
		}
		selected = append(selected, quoteIdent(c))
	}

	query := fmt.Sprintf("SELECT %s FROM history", strings.Join(selected, ", "))
	if cols.deleted != "" {
		query += fmt.Sprintf(" WHERE %s IS NULL", quoteIdent(cols.deleted))
	}
	if cols.timestamp != "" {
		query += fmt.Sprintf(" ORDER BY %s, rowid", quoteIdent(cols.timestamp))
	} else {
		query += " ORDER BY rowid"
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, nil, corrupt(FormatSQLite, err.Error())
	}
	defer rows.Close()

	var (
		entries  []RawEntry
		warnings []Warning
		row      int
	)
	for rows.Next() {
		row++
		var (
			command        sql.NullString
			ts             any
			duration, exit sql.NullInt64
		)
		if err := rows.Scan(&command, &ts, &duration, &exit); err != nil {
			warnings = append(warnings, Warning{Line: row, Message: fmt.Sprintf("unreadable row: %v", err)})
			continue
		}
		if !command.Valid || strings.TrimSpace(command.String) == "" {
			warnings = append(warnings, Warning{Line: row, Message: "row has no command"})
			continue
		}

		entry := RawEntry{Text: command.String, Line: row}
		if ts != nil {
			if t, ok := columnTime(ts); ok {
				entry.Timestamp = t
			} else {
				warnings = append(warnings, Warning{Line: row, Message: fmt.Sprintf("unparsable timestamp %v", ts)})
			}
		}
		if duration.Valid && duration.Int64 >= 0 {
			entry.Duration = time.Duration(duration.Int64) * cols.durUnit
			entry.HasDuration = true
		}
		if exit.Valid {
			entry.ExitStatus = int(exit.Int64)
			entry.HasExitStatus = true
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, corrupt(FormatSQLite, err.Error())
	}
	return entries, warnings, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnTime converts an integer epoch or a textual timestamp column value.
func columnTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case int64:
		if t <= 0 {
			return time.Time{}, false
		}
		return epochToTime(t), true
	case time.Time:
		return t, !t.IsZero()
	case []byte:
		return columnTime(string(t))
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return columnTime(n)
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// epochToTime guesses the unit of an integer epoch from its magnitude.
func epochToTime(v int64) time.Time {
	switch {
	case v > 1e17:
		return time.Unix(0, v)
	case v > 1e14:
		return time.UnixMicro(v)
	case v > 1e11:
		return time.UnixMilli(v)
	default:
		return time.Unix(v, 0)
	}
}
