// Package table provides a small ordered, string-valued table with a row
// index, used as the in-memory shape for variant metadata, per-sample
// attributes and derived statistics.
package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table is an ordered collection of rows with named columns and a string
// row index. Cells are strings; the empty string marks a missing value.
// Index keys are not required to be unique (exploded annotation tables
// repeat keys on purpose).
type Table struct {
	columns []string
	index   []string
	rows    []map[string]string
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{columns: append([]string(nil), columns...)}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return t.columns
}

// Index returns the row keys in order.
func (t *Table) Index() []string {
	return t.index
}

// NRows returns the number of rows.
func (t *Table) NRows() int {
	return len(t.rows)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.columns = append(t.columns, name)
	}
}

// Append adds a row under the given key. Cells for columns the table does
// not know yet are ignored; use AddColumn first to widen the schema.
func (t *Table) Append(key string, cells map[string]string) {
	row := make(map[string]string, len(t.columns))
	for _, c := range t.columns {
		if v, ok := cells[c]; ok {
			row[c] = v
		}
	}
	t.index = append(t.index, key)
	t.rows = append(t.rows, row)
}

// Key returns the index key of row i.
func (t *Table) Key(i int) string {
	return t.index[i]
}

// Row returns the cells of row i, keyed by column name.
func (t *Table) Row(i int) map[string]string {
	return t.rows[i]
}

// Cell returns the value at row i in the named column ("" if absent).
func (t *Table) Cell(i int, column string) string {
	return t.rows[i][column]
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[name]
	}
	return values
}

// SetCell sets the value at row i in the named column, widening the schema
// if needed.
func (t *Table) SetCell(i int, column, value string) {
	t.AddColumn(column)
	t.rows[i][column] = value
}

// SetIndex replaces the row keys. The number of keys must match the number
// of rows.
func (t *Table) SetIndex(keys []string) error {
	if len(keys) != len(t.rows) {
		return fmt.Errorf("index length %d does not match row count %d", len(keys), len(t.rows))
	}
	t.index = append([]string(nil), keys...)
	return nil
}

// Lookup returns the first row stored under key.
func (t *Table) Lookup(key string) (map[string]string, bool) {
	for i, k := range t.index {
		if k == key {
			return t.rows[i], true
		}
	}
	return nil, false
}

// Select returns a new table containing the first row stored under each of
// the given keys, in the order given. A key with no row is an error.
func (t *Table) Select(keys []string) (*Table, error) {
	out := New(t.columns...)
	for _, key := range keys {
		row, ok := t.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("key %q not found in table index", key)
		}
		out.Append(key, row)
	}
	return out, nil
}

// Group is one partition produced by GroupBy: the grouped rows plus the
// values of the grouping columns.
type Group struct {
	Key    string   // group values joined with "/"
	Values []string // one value per grouping column
	Table  *Table
}

// GroupBy partitions rows by the values of the given columns, in order of
// first appearance. Rows with a missing (empty) value in any grouping
// column are omitted, matching standard group-by semantics.
func (t *Table) GroupBy(columns ...string) []Group {
	var groups []Group
	byKey := make(map[string]int)

rows:
	for i, row := range t.rows {
		values := make([]string, len(columns))
		for j, col := range columns {
			v := row[col]
			if v == "" {
				continue rows
			}
			values[j] = v
		}
		key := strings.Join(values, "/")

		gi, ok := byKey[key]
		if !ok {
			gi = len(groups)
			byKey[key] = gi
			groups = append(groups, Group{Key: key, Values: values, Table: New(t.columns...)})
		}
		groups[gi].Table.Append(t.index[i], row)
	}

	return groups
}

// LeftMerge prepends the columns of meta to every row of t, matching on
// t's row keys against meta's index. Rows without a match get empty cells.
// Shared column names keep t's values.
func (t *Table) LeftMerge(meta *Table) *Table {
	var columns []string
	for _, c := range meta.columns {
		if !t.HasColumn(c) {
			columns = append(columns, c)
		}
	}
	columns = append(columns, t.columns...)

	out := New(columns...)
	for i, row := range t.rows {
		merged := make(map[string]string, len(columns))
		if metaRow, ok := meta.Lookup(t.index[i]); ok {
			for _, c := range meta.columns {
				merged[c] = metaRow[c]
			}
		}
		for _, c := range t.columns {
			merged[c] = row[c]
		}
		out.Append(t.index[i], merged)
	}
	return out
}

// DropColumn returns a copy of the table without the named column.
func (t *Table) DropColumn(name string) *Table {
	var columns []string
	for _, c := range t.columns {
		if c != name {
			columns = append(columns, c)
		}
	}

	out := New(columns...)
	for i, row := range t.rows {
		out.Append(t.index[i], row)
	}
	return out
}

// DropDuplicateRows returns a copy of the table keeping only the first of
// any rows that share the same key and cell values.
func (t *Table) DropDuplicateRows() *Table {
	out := New(t.columns...)
	seen := make(map[string]bool)

	for i, row := range t.rows {
		var sb strings.Builder
		sb.WriteString(t.index[i])
		for _, c := range t.columns {
			sb.WriteByte('\x1f')
			sb.WriteString(row[c])
		}
		sig := sb.String()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out.Append(t.index[i], row)
	}
	return out
}

// ReadFile reads a delimited table from path. See Read.
func ReadFile(path, idColumn string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer file.Close()
	return Read(file, idColumn)
}

// Read reads a tab- or comma-delimited table with a header line, indexing
// rows by idColumn. The delimiter is taken from the header line: tab wins
// when present, comma otherwise.
func Read(r io.Reader, idColumn string) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read table header: %w", err)
		}
		return nil, fmt.Errorf("empty table")
	}

	header := scanner.Text()
	sep := ","
	if strings.Contains(header, "\t") {
		sep = "\t"
	}

	columns := strings.Split(strings.TrimRight(header, "\r\n"), sep)
	idIdx := -1
	for i, c := range columns {
		if c == idColumn {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("id column %q not found in table header", idColumn)
	}

	t := New(columns...)
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		if len(fields) != len(columns) {
			return nil, fmt.Errorf("table line %d: expected %d fields, found %d", lineNo, len(columns), len(fields))
		}
		cells := make(map[string]string, len(columns))
		for i, c := range columns {
			cells[c] = fields[i]
		}
		t.Append(fields[idIdx], cells)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return t, nil
}

// WriteTSV writes the table as tab-delimited text, with the index as the
// first column.
func (t *Table) WriteTSV(w io.Writer, indexName string) error {
	bw := bufio.NewWriter(w)

	header := append([]string{indexName}, t.columns...)
	if _, err := bw.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}

	for i, row := range t.rows {
		fields := make([]string, 0, len(t.columns)+1)
		fields = append(fields, t.index[i])
		for _, c := range t.columns {
			fields = append(fields, row[c])
		}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return fmt.Errorf("write table row: %w", err)
		}
	}
	return bw.Flush()
}
