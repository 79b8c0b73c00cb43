package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcftk/vcftk/internal/table"
)

func openInMemory(t *testing.T) *DuckDB {
	t.Helper()
	e, err := OpenDuckDB("")
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func statsFixture() *table.Table {
	t := table.New("CHROM", "POS", "CALL_RATE")
	t.Append("rs1", map[string]string{"CHROM": "1", "POS": "100", "CALL_RATE": "1"})
	t.Append("rs2", map[string]string{"CHROM": "1", "POS": "200", "CALL_RATE": "0.5"})
	t.Append("rs3", map[string]string{"CHROM": "2", "POS": "300", "CALL_RATE": ""})
	return t
}

func TestWriteTable(t *testing.T) {
	e := openInMemory(t)

	require.NoError(t, e.WriteTable("variant_stats", "ID", statsFixture()))

	n, err := e.RowCount("variant_stats")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWriteTable_ColumnsAndNulls(t *testing.T) {
	e := openInMemory(t)
	require.NoError(t, e.WriteTable("variant_stats", "ID", statsFixture()))

	rows, err := e.db.Query(`SELECT "ID", "CALL_RATE" FROM "variant_stats" ORDER BY "ID"`)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		id   string
		rate *string
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.id, &r.rate))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	require.Len(t, got, 3)
	assert.Equal(t, "rs1", got[0].id)
	require.NotNil(t, got[0].rate)
	assert.Equal(t, "1", *got[0].rate)
	assert.Nil(t, got[2].rate, "empty cells land as NULL")
}

func TestWriteTable_ReplacesExisting(t *testing.T) {
	e := openInMemory(t)

	require.NoError(t, e.WriteTable("variant_stats", "ID", statsFixture()))

	smaller := table.New("CHROM")
	smaller.Append("rs9", map[string]string{"CHROM": "3"})
	require.NoError(t, e.WriteTable("variant_stats", "ID", smaller))

	n, err := e.RowCount("variant_stats")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenDuckDB_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.duckdb")

	e, err := OpenDuckDB(path)
	require.NoError(t, err)
	require.NoError(t, e.WriteTable("samples", "sample", statsFixture()))
	require.NoError(t, e.Close())

	reopened, err := OpenDuckDB(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.RowCount("samples")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
