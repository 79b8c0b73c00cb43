package dataset

import (
	"fmt"

	"go.uber.org/zap"
)

// Axis selects what a partitioning operation groups over.
type Axis int

const (
	// AxisSamples partitions the sample roster.
	AxisSamples Axis = iota

	// AxisVariants is declared but not supported: the forward-only stream
	// offers no way to restrict which records are emitted. Using it fails
	// fast with ErrVariantAxisUnsupported.
	AxisVariants
)

func (a Axis) String() string {
	switch a {
	case AxisSamples:
		return "samples"
	case AxisVariants:
		return "variants"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Split partitions the dataset into independent datasets by grouping the
// sample table on the given columns. Each group gets a brand-new dataset
// with its own stream and cache; nothing mutable is shared, because the
// backing stream is single-pass and stateful. Rows with a missing value in
// any grouping column are omitted. Group keys join the column values with
// "/". Only AxisSamples is supported.
func (d *Dataset) Split(axis Axis, columns ...string) (map[string]*Dataset, error) {
	if axis != AxisSamples {
		return nil, fmt.Errorf("split by %s: %w", axis, ErrVariantAxisUnsupported)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("split: at least one grouping column required")
	}
	for _, col := range columns {
		if !d.sampleTable.HasColumn(col) {
			return nil, fmt.Errorf("split: column %q not found in sample table", col)
		}
	}

	parts := make(map[string]*Dataset)
	for _, g := range d.sampleTable.GroupBy(columns...) {
		// Advisory progress echo, not part of the contract.
		d.logger.Info("splitting group",
			zap.String("group", g.Key),
			zap.Int("samples", g.Table.NRows()))

		sub, err := Setup(d.path, Options{
			SampleTable:      g.Table,
			SampleIDColumn:   d.sampleIDColumn,
			Threads:          d.threads,
			AnnotationColumn: d.annotationColumn,
			Logger:           d.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("split group %q: %w", g.Key, err)
		}
		parts[g.Key] = sub
	}
	return parts, nil
}

// Subset returns one new independent dataset scoped to exactly the given
// sample ids, which must all be present in the sample table's index. Only
// AxisSamples is supported.
func (d *Dataset) Subset(axis Axis, ids ...string) (*Dataset, error) {
	if axis != AxisSamples {
		return nil, fmt.Errorf("subset by %s: %w", axis, ErrVariantAxisUnsupported)
	}

	sub, err := d.sampleTable.Select(ids)
	if err != nil {
		return nil, fmt.Errorf("subset: %w", err)
	}

	return Setup(d.path, Options{
		SampleTable:      sub,
		SampleIDColumn:   d.sampleIDColumn,
		Threads:          d.threads,
		AnnotationColumn: d.annotationColumn,
		Logger:           d.logger,
	})
}
