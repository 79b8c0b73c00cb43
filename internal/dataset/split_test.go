package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcftk/vcftk/internal/table"
)

func TestSplit_BySampleColumn(t *testing.T) {
	ds := openTestDataset(t, Options{SampleTable: testSampleTable(t)})

	groups, err := ds.Split(AxisSamples, "group")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	t.Cleanup(func() {
		for _, g := range groups {
			g.Close()
		}
	})

	require.Contains(t, groups, "A")
	require.Contains(t, groups, "B")
	assert.Equal(t, []string{"s1"}, groups["A"].Samples())
	assert.Equal(t, []string{"s2"}, groups["B"].Samples())

	// Every partition replays the full variant axis.
	for name, g := range groups {
		variants, err := g.Variants()
		require.NoError(t, err, name)
		assert.Equal(t, 3, variants.NRows(), name)
	}

	// Partitions cover the parent roster exactly once.
	var seen []string
	seen = append(seen, groups["A"].Samples()...)
	seen = append(seen, groups["B"].Samples()...)
	assert.ElementsMatch(t, ds.Samples(), seen)
}

func TestSplit_MultipleColumns(t *testing.T) {
	ds := openTestDataset(t, Options{SampleTable: testSampleTable(t)})

	groups, err := ds.Split(AxisSamples, "group", "site")
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, g := range groups {
			g.Close()
		}
	})

	require.Contains(t, groups, "A/x")
	require.Contains(t, groups, "B/x")
}

func TestSplit_SkipsRowsWithoutKey(t *testing.T) {
	st := table.New("sample", "group")
	st.Append("s1", map[string]string{"sample": "s1", "group": "A"})
	st.Append("s2", map[string]string{"sample": "s2", "group": ""})

	ds := openTestDataset(t, Options{SampleTable: st})

	groups, err := ds.Split(AxisSamples, "group")
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, g := range groups {
			g.Close()
		}
	})

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"s1"}, groups["A"].Samples())
}

func TestSplit_UnknownColumn(t *testing.T) {
	ds := openTestDataset(t, Options{SampleTable: testSampleTable(t)})

	_, err := ds.Split(AxisSamples, "cohort")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cohort")
}

func TestSplit_VariantAxisUnsupported(t *testing.T) {
	ds := openTestDataset(t, Options{SampleTable: testSampleTable(t)})

	_, err := ds.Split(AxisVariants, "CHROM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVariantAxisUnsupported))
}

func TestSubset(t *testing.T) {
	ds := openTestDataset(t, Options{SampleTable: testSampleTable(t)})

	sub, err := ds.Subset(AxisSamples, "s2")
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []string{"s2"}, sub.Samples())
	assert.Equal(t, "B", sub.SampleTable().Cell(0, "group"))

	// Subsetting samples never alters variant-level content.
	parentVariants, err := ds.Variants()
	require.NoError(t, err)
	variants, err := sub.Variants()
	require.NoError(t, err)
	assert.Equal(t, parentVariants.Index(), variants.Index())
	assert.Equal(t, parentVariants.Column("POS"), variants.Column("POS"))

	m, err := sub.GenotypeMatrix()
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, m.Samples)
	assert.Equal(t, "1/1", m.At(0, 0).String())
}

func TestSubset_UnknownID(t *testing.T) {
	ds := openTestDataset(t, Options{SampleTable: testSampleTable(t)})

	_, err := ds.Subset(AxisSamples, "s9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s9")
}

func TestSubset_VariantAxisUnsupported(t *testing.T) {
	ds := openTestDataset(t, Options{SampleTable: testSampleTable(t)})

	_, err := ds.Subset(AxisVariants, "rs1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVariantAxisUnsupported))
}
