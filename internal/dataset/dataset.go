// Package dataset implements the addressable view over a VCF call set:
// lazily cached variant metadata, genotype decoding, per-variant statistics
// and sample-based partitioning into independent sub-datasets.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vcftk/vcftk/internal/table"
	"github.com/vcftk/vcftk/internal/vcf"
)

// DefaultSampleIDColumn names the sample-attribute column holding sample
// identifiers when none is configured.
const DefaultSampleIDColumn = "sample"

// DefaultAnnotationColumn names the multi-valued annotation INFO field
// consumed by ExplodeAnnotations when none is configured.
const DefaultAnnotationColumn = "CSQ"

// Precondition errors surfaced by dataset operations.
var (
	ErrVariantAxisUnsupported  = errors.New("variant-axis partitioning is not implemented")
	ErrAnnotationColumnMissing = errors.New("annotation column not found in variant metadata")
)

// Metadata table column names (mirroring the VCF columns they come from).
const (
	colID     = "ID"
	colChrom  = "CHROM"
	colPos    = "POS"
	colRef    = "REF"
	colAlt    = "ALT"
	colQual   = "QUAL"
	colFilter = "FILTER"
	colFormat = "FORMAT"
)

// Options configures Setup. The zero value is usable: the sample roster is
// taken from the VCF itself, the sample ID column is DefaultSampleIDColumn,
// one decode thread, and a no-op logger.
type Options struct {
	// SampleTable holds one row of attributes per sample, indexed by sample
	// ID. When set, the dataset's roster is the table's index, which must be
	// a subset of the samples in the VCF.
	SampleTable *table.Table

	// SampleIDColumn names the sample-identifier column of SampleTable.
	SampleIDColumn string

	// Threads is a decode-parallelism hint passed to the stream. It never
	// changes the order or content of anything the dataset returns.
	Threads int

	// AnnotationColumn overrides the INFO field ExplodeAnnotations reads.
	AnnotationColumn string

	Logger *zap.Logger
}

// Dataset binds one VCF stream, one sample roster and one lazily built
// metadata cache. All table-producing operations drain the stream once and
// rewind it afterward, so each call observes the full record set. A Dataset
// is not safe for concurrent use: the rewind-after-read pattern would
// invalidate another caller's iteration mid-scan.
type Dataset struct {
	path             string
	sampleIDColumn   string
	annotationColumn string
	threads          int
	logger           *zap.Logger

	samples     []string
	sampleTable *table.Table

	stream *vcf.Parser

	// Lazy caches: nil means unbuilt. A failed scan leaves them untouched.
	variants *table.Table
	varInfo  *table.Table
}

// Setup opens a dataset over the VCF at path. With no sample table the
// roster is the VCF's full sample list; with one, the roster is the table's
// index and the stream is restricted to those columns.
func Setup(path string, opts Options) (*Dataset, error) {
	if opts.SampleIDColumn == "" {
		opts.SampleIDColumn = DefaultSampleIDColumn
	}
	if opts.AnnotationColumn == "" {
		opts.AnnotationColumn = DefaultAnnotationColumn
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	stream, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		path:             path,
		sampleIDColumn:   opts.SampleIDColumn,
		annotationColumn: opts.AnnotationColumn,
		threads:          opts.Threads,
		logger:           opts.Logger,
		sampleTable:      opts.SampleTable,
		stream:           stream,
	}

	if d.sampleTable == nil {
		d.samples = append([]string(nil), stream.SampleNames()...)
		d.sampleTable = table.New(d.sampleIDColumn)
		for _, s := range d.samples {
			d.sampleTable.Append(s, map[string]string{d.sampleIDColumn: s})
		}
	} else {
		d.samples = append([]string(nil), d.sampleTable.Index()...)
		if err := stream.SetSamples(d.samples); err != nil {
			stream.Close()
			return nil, err
		}
	}
	stream.SetThreads(d.threads)

	d.logger.Debug("dataset opened",
		zap.String("path", path),
		zap.Int("samples", len(d.samples)))

	return d, nil
}

// Path returns the backing VCF path.
func (d *Dataset) Path() string {
	return d.path
}

// Samples returns the sample roster in order.
func (d *Dataset) Samples() []string {
	return d.samples
}

// SampleTable returns the per-sample attribute table, indexed by sample ID.
func (d *Dataset) SampleTable() *table.Table {
	return d.sampleTable
}

// Stream returns the underlying record stream. Exposed for header lookups
// and save templates; consuming it directly leaves the dataset mid-scan
// until the next table-producing operation rewinds it.
func (d *Dataset) Stream() *vcf.Parser {
	return d.stream
}

// Close releases the underlying stream.
func (d *Dataset) Close() error {
	return d.stream.Close()
}

// resetStream rewinds the forward-only stream by reopening it and
// re-applying the sample restriction and thread hint.
func (d *Dataset) resetStream() error {
	stream, err := vcf.NewParser(d.path)
	if err != nil {
		return fmt.Errorf("reset stream: %w", err)
	}
	if err := stream.SetSamples(d.samples); err != nil {
		stream.Close()
		return fmt.Errorf("reset stream: %w", err)
	}
	stream.SetThreads(d.threads)

	d.stream.Close()
	d.stream = stream
	return nil
}

// Variants returns the variant metadata table, keyed by variant ID. The
// first call drains one full pass of the stream and caches the result;
// every call (cached or not) rewinds the stream afterward so subsequent
// stream-consuming operations observe a fresh iteration. Duplicate or
// empty IDs are logged as a warning, never auto-corrected: rebuild them
// with CreateIDs before relying on ID-keyed lookups.
func (d *Dataset) Variants() (*table.Table, error) {
	if d.variants == nil {
		t, err := d.scanMetadata()
		if err != nil {
			return nil, err
		}
		d.variants = t
		d.warnOnIDIssues(d.variants.Index())
	}
	if err := d.resetStream(); err != nil {
		return nil, err
	}
	return d.variants, nil
}

// scanMetadata drains the stream once, building the positional metadata
// table in record order.
func (d *Dataset) scanMetadata() (*table.Table, error) {
	t := table.New(colID, colChrom, colPos, colRef, colAlt, colQual, colFilter, colFormat)

	for {
		rec, err := d.stream.Next()
		if err != nil {
			return nil, fmt.Errorf("scan variant metadata: %w", err)
		}
		if rec == nil {
			break
		}
		t.Append(rec.ID, map[string]string{
			colID:     rec.ID,
			colChrom:  rec.Chrom,
			colPos:    strconv.FormatInt(rec.Pos, 10),
			colRef:    rec.Ref,
			colAlt:    rec.AltString(),
			colQual:   rec.QualString(),
			colFilter: rec.Filter,
			colFormat: strings.Join(rec.Format, ":"),
		})
	}
	return t, nil
}

// warnOnIDIssues makes the duplicate/empty ID condition observable without
// failing: the dataset stays usable, the caller decides how to remediate.
func (d *Dataset) warnOnIDIssues(ids []string) {
	report := CheckIDs(ids)
	if !report.HasIssues() {
		return
	}
	d.logger.Warn("duplicate or empty variant IDs; create unique IDs before relying on ID-keyed lookups",
		zap.Int("duplicated", len(report.Duplicates)),
		zap.Int("empty", report.Empty))
}

// VariantIDs returns the variant IDs in record order, building the metadata
// table if needed.
func (d *Dataset) VariantIDs() ([]string, error) {
	variants, err := d.Variants()
	if err != nil {
		return nil, err
	}
	return variants.Index(), nil
}

// CreateIDs derives deterministic variant IDs from the cached metadata and
// installs them as the table's index and ID column. This is the only
// supported mutation of the cached table. Returns the new IDs.
func (d *Dataset) CreateIDs(useAlleles bool) ([]string, error) {
	variants, err := d.Variants()
	if err != nil {
		return nil, err
	}

	ids := BuildVariantIDs(variants, useAlleles)
	if err := variants.SetIndex(ids); err != nil {
		return nil, err
	}
	for i, id := range ids {
		variants.SetCell(i, colID, id)
	}
	d.warnOnIDIssues(ids)
	return ids, nil
}

// VariantInfo returns the per-variant INFO field table, keyed by variant
// ID, one column per INFO field declared in the header. Records lacking a
// field get an empty cell. Built lazily on first access; the columns are
// also appended to the cached metadata table, so annotation explosion can
// find them there. The stream is rewound after every access.
func (d *Dataset) VariantInfo() (*table.Table, error) {
	if d.varInfo == nil {
		ids, err := d.VariantIDs()
		if err != nil {
			return nil, err
		}

		t, err := d.scanInfo(ids)
		if err != nil {
			return nil, err
		}
		d.varInfo = t
		d.warnOnIDIssues(ids)

		for _, col := range t.Columns() {
			d.variants.AddColumn(col)
		}
		for row := 0; row < t.NRows() && row < d.variants.NRows(); row++ {
			for _, col := range t.Columns() {
				d.variants.SetCell(row, col, t.Cell(row, col))
			}
		}
	}
	if err := d.resetStream(); err != nil {
		return nil, err
	}
	return d.varInfo, nil
}

func (d *Dataset) scanInfo(ids []string) (*table.Table, error) {
	t := table.New(d.stream.InfoKeys()...)

	i := 0
	for {
		rec, err := d.stream.Next()
		if err != nil {
			return nil, fmt.Errorf("scan variant info: %w", err)
		}
		if rec == nil {
			break
		}
		if i >= len(ids) {
			return nil, fmt.Errorf("scan variant info: stream yielded more records than cached metadata rows (%d)", len(ids))
		}
		t.Append(ids[i], rec.Info)
		i++
	}
	return t, nil
}

// Format drains one stream pass extracting a single FORMAT field per
// record and sample, returning a variant × sample table. For fields with
// one value per allele, allele selects which value; records without the
// field yield empty cells. The stream is rewound afterward.
func (d *Dataset) Format(name string, allele int) (*table.Table, error) {
	ids, err := d.VariantIDs()
	if err != nil {
		return nil, err
	}

	t := table.New(d.samples...)

	i := 0
	for {
		rec, err := d.stream.Next()
		if err != nil {
			return nil, fmt.Errorf("extract format field %q: %w", name, err)
		}
		if rec == nil {
			break
		}

		values := rec.FormatField(name)
		cells := make(map[string]string, len(d.samples))
		for j, sample := range rec.Samples() {
			cells[sample] = pickAlleleValue(values[j], allele)
		}
		t.Append(idAt(ids, i), cells)
		i++
	}

	if err := d.resetStream(); err != nil {
		return nil, err
	}
	return t, nil
}

// pickAlleleValue selects one comma-separated sub-value of a FORMAT field
// value. Single-valued fields are returned whole regardless of allele.
func pickAlleleValue(value string, allele int) string {
	if value == "" || value == "." {
		return ""
	}
	parts := strings.Split(value, ",")
	if len(parts) == 1 {
		return parts[0]
	}
	if allele < 0 || allele >= len(parts) {
		return ""
	}
	return parts[allele]
}

// Statistic column names produced by Stats.
const (
	StatNumCalled     = "NUM_CALLED"
	StatCallRate      = "CALL_RATE"
	StatAAFreq        = "AA_FREQ"
	StatNuclDiversity = "NUCL_DIVERSITY"
	StatVarType       = "VAR_TYPE"
	StatVarSubtype    = "VAR_SUBTYPE"
)

// Stats drains one stream pass computing per-variant summary statistics:
// called-sample count, call rate, alternate-allele frequency, nucleotide
// diversity and the variant type/subtype classification. When
// mergeIntoMetadata is set, the columns are also appended to the cached
// metadata table. The stream is rewound afterward.
func (d *Dataset) Stats(mergeIntoMetadata bool) (*table.Table, error) {
	ids, err := d.VariantIDs()
	if err != nil {
		return nil, err
	}

	t := table.New(StatNumCalled, StatCallRate, StatAAFreq, StatNuclDiversity, StatVarType, StatVarSubtype)

	i := 0
	for {
		rec, err := d.stream.Next()
		if err != nil {
			return nil, fmt.Errorf("compute variant stats: %w", err)
		}
		if rec == nil {
			break
		}
		t.Append(idAt(ids, i), map[string]string{
			StatNumCalled:     strconv.Itoa(rec.NumCalled()),
			StatCallRate:      formatFloat(rec.CallRate()),
			StatAAFreq:        formatFloat(rec.AltAlleleFrequency()),
			StatNuclDiversity: formatFloat(rec.NucleotideDiversity()),
			StatVarType:       rec.Type(),
			StatVarSubtype:    rec.Subtype(),
		})
		i++
	}

	if mergeIntoMetadata && d.variants != nil {
		for _, col := range t.Columns() {
			d.variants.AddColumn(col)
		}
		for row := 0; row < t.NRows() && row < d.variants.NRows(); row++ {
			for _, col := range t.Columns() {
				d.variants.SetCell(row, col, t.Cell(row, col))
			}
		}
	}

	if err := d.resetStream(); err != nil {
		return nil, err
	}
	return t, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Matrix is a variant × sample table of decoded genotypes.
type Matrix struct {
	VariantIDs []string
	Samples    []string
	Genotypes  [][]vcf.Genotype // one row per variant, one column per sample
}

// At returns the genotype of sample j at variant i.
func (m *Matrix) At(i, j int) vcf.Genotype {
	return m.Genotypes[i][j]
}

// StringTable renders the matrix as a table of canonical genotype strings.
func (m *Matrix) StringTable() *table.Table {
	t := table.New(m.Samples...)
	for i, row := range m.Genotypes {
		cells := make(map[string]string, len(m.Samples))
		for j, g := range row {
			cells[m.Samples[j]] = g.String()
		}
		t.Append(m.VariantIDs[i], cells)
	}
	return t
}

// GenotypeMatrix drains one stream pass decoding every sample's raw call
// into a Genotype value object. Decoding runs on a worker pool sized by the
// thread hint; row order always matches stream order. The stream is
// rewound afterward.
func (d *Dataset) GenotypeMatrix() (*Matrix, error) {
	ids, err := d.VariantIDs()
	if err != nil {
		return nil, err
	}

	items := make(chan workItem, 2*d.threads)
	var scanErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			rec, err := d.stream.Next()
			if err != nil {
				scanErr = fmt.Errorf("scan genotypes: %w", err)
				return
			}
			if rec == nil {
				return
			}
			items <- workItem{seq: seq, calls: rec.RawCalls()}
			seq++
		}
	}()

	m := &Matrix{
		VariantIDs: ids,
		Samples:    d.samples,
	}

	if err := collectOrdered(decodeGenotypes(items, d.threads), func(r workResult) error {
		m.Genotypes = append(m.Genotypes, r.row)
		return nil
	}); err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	if err := d.resetStream(); err != nil {
		return nil, err
	}
	return m, nil
}

// ExplodeAnnotations expands the multi-valued annotation column (CSQ by
// default) into one row per sub-record, keyed by variant ID, with one
// column per sub-field declared in the header. Identical rows are
// deduplicated. With addToMetadata, the result is left-merged onto the
// metadata table (annotation column dropped), so variants with several
// annotations appear on several rows. Fails if the annotation column is
// absent from the metadata.
func (d *Dataset) ExplodeAnnotations(addToMetadata bool) (*table.Table, error) {
	variants, err := d.Variants()
	if err != nil {
		return nil, err
	}

	if !variants.HasColumn(d.annotationColumn) {
		return nil, fmt.Errorf("%w: %q (call VariantInfo first to pull INFO fields into metadata)",
			ErrAnnotationColumnMissing, d.annotationColumn)
	}

	schema, err := d.annotationSchema()
	if err != nil {
		return nil, err
	}

	out := table.New(schema...)
	for i := 0; i < variants.NRows(); i++ {
		raw := variants.Cell(i, d.annotationColumn)
		if raw == "" || raw == "." {
			continue
		}
		for _, sub := range strings.Split(raw, ",") {
			values := strings.Split(sub, "|")
			cells := make(map[string]string, len(schema))
			for j, col := range schema {
				if j < len(values) {
					cells[col] = values[j]
				}
			}
			out.Append(variants.Key(i), cells)
		}
	}
	out = out.DropDuplicateRows()

	if addToMetadata {
		out = out.LeftMerge(variants.DropColumn(d.annotationColumn))
	}
	return out, nil
}

// annotationSchema extracts the sub-field names from the annotation
// column's header declaration, e.g.
// Description="Consequence annotations from Ensembl VEP. Format: Allele|Consequence|..."
func (d *Dataset) annotationSchema() ([]string, error) {
	fi, ok := d.stream.HeaderType(d.annotationColumn)
	if !ok {
		return nil, fmt.Errorf("annotation column %q has no header declaration", d.annotationColumn)
	}
	idx := strings.LastIndex(fi.Description, "Format: ")
	if idx < 0 {
		return nil, fmt.Errorf("annotation column %q header declares no sub-field format: %q",
			d.annotationColumn, fi.Description)
	}
	return strings.Split(fi.Description[idx+len("Format: "):], "|"), nil
}

// SaveOptions configures Save. The zero value writes every current variant
// with its on-disk ID untouched.
type SaveOptions struct {
	// KeepIDs restricts the output to records whose variant ID is in the
	// list. Nil keeps all current IDs.
	KeepIDs []string

	// RewriteIDs overwrites each written record's ID field with the
	// dataset's in-memory variant ID.
	RewriteIDs bool
}

// Save drains one stream pass writing the kept records to a new VCF at
// path, restricted to the dataset's sample roster. Records not kept are
// skipped, never erased from the source. The source stream is rewound
// afterward.
func (d *Dataset) Save(path string, opts SaveOptions) error {
	ids, err := d.VariantIDs()
	if err != nil {
		return err
	}

	keep := make(map[string]bool)
	if opts.KeepIDs == nil {
		for _, id := range ids {
			keep[id] = true
		}
	} else {
		for _, id := range opts.KeepIDs {
			keep[id] = true
		}
	}

	w, err := vcf.NewWriter(path, d.stream)
	if err != nil {
		return err
	}

	written := 0
	i := 0
	for {
		rec, err := d.stream.Next()
		if err != nil {
			w.Close()
			return fmt.Errorf("save vcf: %w", err)
		}
		if rec == nil {
			break
		}
		id := idAt(ids, i)
		i++

		if !keep[id] {
			continue
		}
		if opts.RewriteIDs {
			rec.ID = id
		}
		if err := w.WriteRecord(rec); err != nil {
			w.Close()
			return err
		}
		written++
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("save vcf: %w", err)
	}
	if err := d.resetStream(); err != nil {
		return err
	}

	d.logger.Info("vcf saved",
		zap.String("path", path),
		zap.Int("records", written))
	return nil
}

// idAt returns the cached ID for stream position i, or "" past the end
// (possible only if the backing file changed under the dataset).
func idAt(ids []string, i int) string {
	if i < len(ids) {
		return ids[i]
	}
	return ""
}
