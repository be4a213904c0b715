package report

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteWriter writes the report as a standalone SQLite database with a
// scan table and a report table. The file is built in a temporary location
// and then copied to the destination.
type SQLiteWriter struct{}

const sqliteSchema = `
	CREATE TABLE scan (
		id TEXT PRIMARY KEY,
		source TEXT,
		generated_at DATETIME NOT NULL,
		total INTEGER NOT NULL
	);

	CREATE TABLE report (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL REFERENCES scan(id),
		uid TEXT NOT NULL,
		subject TEXT,
		sender TEXT,
		received_at DATETIME,
		due_date TEXT,
		priority TEXT NOT NULL,
		is_read INTEGER NOT NULL,
		is_pending INTEGER NOT NULL
	);

	CREATE INDEX idx_report_priority ON report(priority);
	CREATE INDEX idx_report_due ON report(due_date);
`

func (s *SQLiteWriter) ContentType() string { return "application/vnd.sqlite3" }

func (s *SQLiteWriter) Extension() string { return ".sqlite" }

func (s *SQLiteWriter) Write(w io.Writer, rep *Report) error {
	tmp, err := os.CreateTemp("", "mailtriage-*.sqlite")
	if err != nil {
		return fmt.Errorf("failed to create temporary database: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := writeDatabase(path, rep); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to copy database: %w", err)
	}
	return nil
}

func writeDatabase(path string, rep *Report) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(
		`INSERT INTO scan (id, source, generated_at, total) VALUES (?, ?, ?, ?)`,
		rep.ID, rep.Source, rep.GeneratedAt.UTC(), len(rep.Rows),
	); err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO report (scan_id, uid, subject, sender, received_at, due_date, priority, is_read, is_pending)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rep.Rows {
		var received, due any
		if !row.Received.IsZero() {
			received = row.Received.UTC().Format(time.RFC3339)
		}
		if row.Due != nil {
			due = row.Due.String()
		}
		if _, err := stmt.Exec(
			rep.ID, row.UID, row.Subject, row.Sender, received, due,
			row.Priority.String(), row.Read, row.Pending,
		); err != nil {
			return fmt.Errorf("failed to insert row %s: %w", row.UID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}
