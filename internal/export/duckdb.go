// Package export writes dataset tables to a DuckDB database so filtered
// call sets can be sliced further with plain SQL.
package export

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/vcftk/vcftk/internal/table"
)

// DuckDB is a writable DuckDB database holding exported dataset tables.
type DuckDB struct {
	db   *sql.DB
	path string
}

// OpenDuckDB opens (or creates) a DuckDB database at path.
func OpenDuckDB(path string) (*DuckDB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDB{db: db, path: path}, nil
}

// Close closes the database connection.
func (e *DuckDB) Close() error {
	return e.db.Close()
}

// WriteTable creates (replacing any previous version) a DuckDB table with
// the given name and inserts every row. The table's index becomes the
// first column, named indexName. All columns are VARCHAR; empty cells
// become NULL.
func (e *DuckDB) WriteTable(name, indexName string, t *table.Table) error {
	columns := append([]string{indexName}, t.Columns()...)

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c) + " VARCHAR"
	}

	if _, err := e.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	if _, err := e.db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)",
		quoteIdent(name), strings.Join(quoted, ", "))); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert into %s: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		quoteIdent(name), placeholders))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert into %s: %w", name, err)
	}
	defer stmt.Close()

	for i := 0; i < t.NRows(); i++ {
		args := make([]any, 0, len(columns))
		args = append(args, t.Key(i))
		for _, c := range t.Columns() {
			if v := t.Cell(i, c); v != "" {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert into %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert into %s: %w", name, err)
	}
	return nil
}

// RowCount returns the number of rows in an exported table.
func (e *DuckDB) RowCount(name string) (int, error) {
	var n int
	err := e.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", name, err)
	}
	return n, nil
}

// quoteIdent quotes a SQL identifier for DuckDB.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
