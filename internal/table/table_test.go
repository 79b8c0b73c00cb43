package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	t := New("sample", "group", "site")
	t.Append("s1", map[string]string{"sample": "s1", "group": "A", "site": "x"})
	t.Append("s2", map[string]string{"sample": "s2", "group": "B", "site": "x"})
	t.Append("s3", map[string]string{"sample": "s3", "group": "A", "site": "y"})
	t.Append("s4", map[string]string{"sample": "s4", "group": "", "site": "y"})
	return t
}

func TestTable_Basics(t *testing.T) {
	tbl := sampleTable()

	assert.Equal(t, 4, tbl.NRows())
	assert.Equal(t, []string{"sample", "group", "site"}, tbl.Columns())
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, tbl.Index())
	assert.Equal(t, "B", tbl.Cell(1, "group"))
	assert.Equal(t, []string{"A", "B", "A", ""}, tbl.Column("group"))

	row, ok := tbl.Lookup("s3")
	require.True(t, ok)
	assert.Equal(t, "y", row["site"])

	_, ok = tbl.Lookup("nope")
	assert.False(t, ok)
}

func TestTable_GroupBy(t *testing.T) {
	tbl := sampleTable()

	groups := tbl.GroupBy("group")
	require.Len(t, groups, 2, "missing-key row must be omitted")

	assert.Equal(t, "A", groups[0].Key)
	assert.Equal(t, []string{"s1", "s3"}, groups[0].Table.Index())
	assert.Equal(t, "B", groups[1].Key)
	assert.Equal(t, []string{"s2"}, groups[1].Table.Index())

	// Groups partition the non-missing rows exactly.
	var union []string
	for _, g := range groups {
		union = append(union, g.Table.Index()...)
	}
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, union)
}

func TestTable_GroupByMultipleColumns(t *testing.T) {
	tbl := sampleTable()

	groups := tbl.GroupBy("group", "site")
	require.Len(t, groups, 3)
	assert.Equal(t, "A/x", groups[0].Key)
	assert.Equal(t, []string{"A", "x"}, groups[0].Values)
	assert.Equal(t, "B/x", groups[1].Key)
	assert.Equal(t, "A/y", groups[2].Key)
}

func TestTable_Select(t *testing.T) {
	tbl := sampleTable()

	sub, err := tbl.Select([]string{"s3", "s1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s1"}, sub.Index())
	assert.Equal(t, "y", sub.Cell(0, "site"))

	_, err = tbl.Select([]string{"s1", "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestTable_SetIndex(t *testing.T) {
	tbl := sampleTable()

	require.NoError(t, tbl.SetIndex([]string{"a", "b", "c", "d"}))
	assert.Equal(t, "a", tbl.Key(0))

	assert.Error(t, tbl.SetIndex([]string{"too", "short"}))
}

func TestTable_LeftMerge(t *testing.T) {
	meta := New("CHROM", "POS")
	meta.Append("v1", map[string]string{"CHROM": "1", "POS": "100"})
	meta.Append("v2", map[string]string{"CHROM": "2", "POS": "200"})

	anns := New("Gene", "Rank")
	anns.Append("v1", map[string]string{"Gene": "A", "Rank": "1"})
	anns.Append("v1", map[string]string{"Gene": "B", "Rank": "2"})
	anns.Append("v9", map[string]string{"Gene": "C", "Rank": "3"})

	merged := anns.LeftMerge(meta)
	require.Equal(t, 3, merged.NRows())
	assert.Equal(t, []string{"CHROM", "POS", "Gene", "Rank"}, merged.Columns())
	assert.Equal(t, "1", merged.Cell(0, "CHROM"))
	assert.Equal(t, "B", merged.Cell(1, "Gene"))
	assert.Equal(t, "", merged.Cell(2, "CHROM"), "unmatched key gets empty meta cells")
}

func TestTable_DropColumnAndDuplicates(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append("k", map[string]string{"a": "1", "b": "2"})
	tbl.Append("k", map[string]string{"a": "1", "b": "2"})
	tbl.Append("k", map[string]string{"a": "1", "b": "3"})

	deduped := tbl.DropDuplicateRows()
	assert.Equal(t, 2, deduped.NRows())

	dropped := tbl.DropColumn("b")
	assert.Equal(t, []string{"a"}, dropped.Columns())
	assert.Equal(t, 3, dropped.NRows())
}

func TestRead_TSV(t *testing.T) {
	in := "sample\tgroup\ns1\tA\ns2\tB\n"
	tbl, err := Read(strings.NewReader(in), "sample")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, tbl.Index())
	assert.Equal(t, "B", tbl.Cell(1, "group"))
}

func TestRead_CSV(t *testing.T) {
	in := "sample,group\ns1,A\ns2,B\n"
	tbl, err := Read(strings.NewReader(in), "sample")
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NRows())
	assert.Equal(t, "A", tbl.Cell(0, "group"))
}

func TestRead_MissingIDColumn(t *testing.T) {
	_, err := Read(strings.NewReader("a\tb\n1\t2\n"), "sample")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample")
}

func TestRead_RaggedRow(t *testing.T) {
	_, err := Read(strings.NewReader("a\tb\n1\n"), "a")
	require.Error(t, err)
}

func TestTable_WriteTSV(t *testing.T) {
	tbl := New("group")
	tbl.Append("s1", map[string]string{"group": "A"})

	var sb strings.Builder
	require.NoError(t, tbl.WriteTSV(&sb, "sample"))
	assert.Equal(t, "sample\tgroup\ns1\tA\n", sb.String())
}

func TestTable_Render(t *testing.T) {
	tbl := New("group")
	tbl.Append("s1", map[string]string{"group": "A"})

	var sb strings.Builder
	tbl.Render(&sb, "sample")
	out := sb.String()
	assert.Contains(t, out, "group")
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "1 rows")
}
