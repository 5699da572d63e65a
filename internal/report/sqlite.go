package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/project-strings/internal/literal"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	findings   INTEGER NOT NULL
)`

const createFindingsTable = `
CREATE TABLE IF NOT EXISTS findings (
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	path        TEXT NOT NULL,
	extension   TEXT NOT NULL,
	start_index INTEGER NOT NULL,
	end_index   INTEGER NOT NULL,
	line        INTEGER NOT NULL,
	character   INTEGER NOT NULL,
	tag1        TEXT NOT NULL,
	tag2        TEXT NOT NULL,
	tag3        TEXT NOT NULL,
	text        TEXT NOT NULL
)`

const createFindingsIndex = `CREATE INDEX IF NOT EXISTS idx_findings_run_path ON findings(run_id, path, start_index)`

var findingColumns = []string{
	"run_id", "path", "extension", "start_index", "end_index",
	"line", "character", "tag1", "tag2", "tag3", "text",
}

// SQLiteSink appends reports to a SQLite database, one row per finding.
// Every report is a separate run, so a database can hold a history of
// scans.
type SQLiteSink struct {
	path string
}

// NewSQLiteSink creates a sink writing to the database file at path.
func NewSQLiteSink(path string) *SQLiteSink {
	return &SQLiteSink{path: path}
}

// Name returns the format name.
func (s *SQLiteSink) Name() string {
	return FormatSQLite
}

// Write stores the report in a single transaction.
func (s *SQLiteSink) Write(ctx context.Context, report *Report) error {
	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := createSchema(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("runs").
		Columns("run_id", "started_at", "findings").
		Values(report.RunID, report.Started.UTC().Format(time.RFC3339), len(report.Literals)).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", report.RunID, err)
	}

	// Build the statement once with squirrel and reuse it for every row.
	sqlStr, _, err := sq.Insert("findings").
		Columns(findingColumns...).
		Values(make([]any, len(findingColumns))...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range report.Literals {
		_, err := stmt.ExecContext(ctx,
			report.RunID,
			l.Path,
			literal.Extension(l.Path),
			l.StartIndex,
			l.EndIndex,
			l.Line,
			l.Character,
			l.Tag1,
			l.Tag2,
			l.Tag3,
			l.Text,
		)
		if err != nil {
			return fmt.Errorf("failed to insert finding in %s: %w", l.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	ddl := []struct {
		name string
		sql  string
	}{
		{"runs", createRunsTable},
		{"findings", createFindingsTable},
		{"findings index", createFindingsIndex},
	}
	for _, d := range ddl {
		if _, err := db.ExecContext(ctx, d.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", d.name, err)
		}
	}
	return nil
}

// ReadRun loads the findings of one run in stored order.
func ReadRun(ctx context.Context, path, runID string) ([]literal.Literal, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := sq.Select("path", "start_index", "end_index", "line", "character", "tag1", "tag2", "tag3", "text").
		From("findings").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("rowid").
		RunWith(db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []literal.Literal
	for rows.Next() {
		var l literal.Literal
		if err := rows.Scan(&l.Path, &l.StartIndex, &l.EndIndex, &l.Line, &l.Character, &l.Tag1, &l.Tag2, &l.Tag3, &l.Text); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
