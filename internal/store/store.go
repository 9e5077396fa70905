// Package store exports cached tables into a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"

	"devsurvey/pkg/metadata"
)

// ErrEmptyTableName is returned by Export for a blank table name.
var ErrEmptyTableName = errors.New("table name required")

// Store wraps a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to migrate %s: %w", path, err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS exports (
  stage       TEXT NOT NULL,
  table_name  TEXT NOT NULL,
  rows        INTEGER NOT NULL,
  sha256      TEXT NOT NULL DEFAULT '',
  run_id      TEXT NOT NULL DEFAULT '',
  exported_at INTEGER NOT NULL,
  PRIMARY KEY (stage, table_name)
);
`)

	return err
}

// quote returns a SQL identifier for a column or table name.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlType(t series.Type) string {
	switch t {
	case series.Int, series.Bool:
		return "INTEGER"
	case series.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// cell converts element i of s to a driver value; missing cells are NULL.
func cell(s series.Series, i int) (any, error) {
	e := s.Elem(i)
	if e.IsNA() {
		return nil, nil
	}

	switch s.Type() {
	case series.Int:
		return e.Int()
	case series.Float:
		f := e.Float()
		if math.IsNaN(f) {
			return nil, nil
		}

		return f, nil
	case series.Bool:
		b, err := e.Bool()
		if err != nil {
			return nil, err
		}

		if b {
			return 1, nil
		}

		return 0, nil
	default:
		return e.String(), nil
	}
}

// Export replaces table with the contents of df in one transaction and
// records the export against stage. entry may be nil when the frame has no
// manifest entry.
func (s *Store) Export(ctx context.Context, stage, table string, df dataframe.DataFrame, entry *metadata.Entry) (err error) {
	if strings.TrimSpace(table) == "" {
		return ErrEmptyTableName
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	names := df.Names()
	cols := make([]series.Series, len(names))
	defs := make([]string, len(names))
	quoted := make([]string, len(names))

	for i, name := range names {
		cols[i] = df.Col(name)
		quoted[i] = quote(name)
		defs[i] = quoted[i] + " " + sqlType(cols[i].Type())
	}

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quote(table), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(quoted, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))

	for row := 0; row < df.Nrow(); row++ {
		for j, col := range cols {
			if args[j], err = cell(col, row); err != nil {
				return fmt.Errorf("row %d column %s: %w", row, names[j], err)
			}
		}

		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", row, err)
		}
	}

	var hash, runID string
	if entry != nil {
		hash, runID = entry.Hash, entry.RunID
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO exports(stage, table_name, rows, sha256, run_id, exported_at)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(stage, table_name) DO UPDATE SET
  rows=excluded.rows, sha256=excluded.sha256, run_id=excluded.run_id, exported_at=excluded.exported_at
`, stage, table, df.Nrow(), hash, runID, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}

	return tx.Commit()
}

// ExportRecord describes one recorded export.
type ExportRecord struct {
	Stage      string
	Table      string
	Rows       int
	Hash       string
	RunID      string
	ExportedAt time.Time
}

// Exports lists recorded exports ordered by stage.
func (s *Store) Exports(ctx context.Context) ([]ExportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT stage, table_name, rows, sha256, run_id, exported_at
FROM exports
ORDER BY stage, table_name
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRecord

	for rows.Next() {
		var (
			r  ExportRecord
			at int64
		)

		if err := rows.Scan(&r.Stage, &r.Table, &r.Rows, &r.Hash, &r.RunID, &at); err != nil {
			return nil, err
		}

		r.ExportedAt = time.UnixMilli(at)
		out = append(out, r)
	}

	return out, rows.Err()
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(table)).Scan(&n)

	return n, err
}
