package history

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func buildHistoryDB(t *testing.T, schema string, inserts ...string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	for _, stmt := range append([]string{schema}, inserts...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			t.Fatalf("failed to run %q: %v", stmt, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read database: %v", err)
	}
	return data
}

func TestSQLiteParserAtuin(t *testing.T) {
	data := buildHistoryDB(t,
		`CREATE TABLE history (id TEXT PRIMARY KEY, timestamp INTEGER NOT NULL, duration INTEGER, exit INTEGER, command TEXT, cwd TEXT, deleted_at INTEGER)`,
		`INSERT INTO history VALUES ('b', 1700000010000000000, 2000000000, 0, 'git status', '/src', NULL)`,
		`INSERT INTO history VALUES ('a', 1700000000000000000, -1, 0, 'ls', '/src', NULL)`,
		`INSERT INTO history VALUES ('c', 1700000020000000000, 5, 1, 'rm secret', '/src', 1700000030000000000)`,
		`INSERT INTO history VALUES ('d', 1700000040000000000, 5, 0, NULL, '/src', NULL)`,
	)

	format, err := Detect(data, "")
	if err != nil || format != FormatSQLite {
		t.Fatalf("expected sqlite format, got %s (%v)", format, err)
	}

	entries, warnings, err := SQLiteParser{}.Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 live entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Text != "ls" || entries[1].Text != "git status" {
		t.Errorf("expected entries ordered by timestamp, got %q then %q", entries[0].Text, entries[1].Text)
	}
	if !entries[0].Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("expected nanosecond timestamp decoded, got %v", entries[0].Timestamp)
	}
	if entries[0].HasDuration {
		t.Errorf("negative duration should be treated as unknown")
	}
	if !entries[1].HasDuration || entries[1].Duration != 2*time.Second {
		t.Errorf("expected 2s duration, got %v", entries[1].Duration)
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning for the NULL command, got %v", warnings)
	}
}

func TestSQLiteParserSecondsAndMilliseconds(t *testing.T) {
	data := buildHistoryDB(t,
		`CREATE TABLE history (id INTEGER PRIMARY KEY AUTOINCREMENT, timestamp INTEGER NOT NULL, command TEXT NOT NULL, exit_code INTEGER, duration_ms INTEGER)`,
		`INSERT INTO history (timestamp, command, exit_code, duration_ms) VALUES (1700000000, 'make', 2, 1500)`,
	)

	entries, _, err := SQLiteParser{}.Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if !e.Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("unexpected timestamp %v", e.Timestamp)
	}
	if e.Duration != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", e.Duration)
	}
	if !e.HasExitStatus || e.ExitStatus != 2 {
		t.Errorf("expected exit status 2, got %d", e.ExitStatus)
	}
}

func TestSQLiteParserWithoutHistoryTable(t *testing.T) {
	data := buildHistoryDB(t, `CREATE TABLE notes (body TEXT)`)
	_, _, err := SQLiteParser{}.Parse(data)
	if !errors.Is(err, ErrCorruptHistoryFile) {
		t.Fatalf("expected ErrCorruptHistoryFile, got %v", err)
	}
}

func TestEpochToTime(t *testing.T) {
	want := time.Unix(1700000000, 0)
	for _, v := range []int64{1700000000, 1700000000000, 1700000000000000, 1700000000000000000} {
		if got := epochToTime(v); !got.Equal(want) {
			t.Errorf("epochToTime(%d) = %v, want %v", v, got, want)
		}
	}
}
