package vcf

// Record represents a single variant line from a VCF file, including the
// per-sample columns that were active on the parser when it was read.
type Record struct {
	Chrom  string            // Chromosome name (e.g., "12", "chr12")
	Pos    int64             // 1-based genomic position
	ID     string            // Variant identifier ("." if missing)
	Ref    string            // Reference allele
	Alt    []string          // Alternate alleles
	Qual   float64           // Quality score (0 if missing)
	Filter string            // Filter status (PASS or filter name)
	Info   map[string]string // INFO field key-value pairs, flags map to "true"
	Format []string          // FORMAT keys, in column order

	qualRaw string
	infoRaw string

	samples    []string   // active sample names, in roster order
	sampleData [][]string // per sample, values aligned with Format
}

// Samples returns the active sample names for this record, in roster order.
func (r *Record) Samples() []string {
	return r.samples
}

// QualString returns the QUAL column as written in the file ("." if missing).
func (r *Record) QualString() string {
	return r.qualRaw
}

// InfoString returns the INFO column as written in the file.
func (r *Record) InfoString() string {
	return r.infoRaw
}

// AltString returns the ALT column as written in the file.
func (r *Record) AltString() string {
	return joinAlleles(r.Alt)
}

func joinAlleles(alts []string) string {
	switch len(alts) {
	case 0:
		return "."
	case 1:
		return alts[0]
	}
	s := alts[0]
	for _, a := range alts[1:] {
		s += "," + a
	}
	return s
}

// FormatField returns the value of one FORMAT key for each active sample,
// in roster order. Samples without the field yield "".
func (r *Record) FormatField(name string) []string {
	idx := -1
	for i, key := range r.Format {
		if key == name {
			idx = i
			break
		}
	}

	values := make([]string, len(r.sampleData))
	if idx < 0 {
		return values
	}
	for i, data := range r.sampleData {
		if idx < len(data) {
			values[i] = data[idx]
		}
	}
	return values
}

// RawCalls returns the raw genotype call for each active sample: allele
// indices (-1 for missing) terminated by a phase flag (0 or 1).
func (r *Record) RawCalls() [][]int {
	gts := r.FormatField("GT")
	calls := make([][]int, len(gts))
	for i, gt := range gts {
		calls[i] = parseCall(gt)
	}
	return calls
}

// NumCalled returns the number of samples with a fully called genotype
// (no missing allele).
func (r *Record) NumCalled() int {
	called := 0
	for _, call := range r.RawCalls() {
		if callComplete(call) {
			called++
		}
	}
	return called
}

// CallRate returns the fraction of samples with a fully called genotype.
func (r *Record) CallRate() float64 {
	if len(r.sampleData) == 0 {
		return 0
	}
	return float64(r.NumCalled()) / float64(len(r.sampleData))
}

// AltAlleleFrequency returns the frequency of non-reference alleles among
// all called alleles.
func (r *Record) AltAlleleFrequency() float64 {
	total, alt := r.countAlleles()
	if total == 0 {
		return 0
	}
	return float64(alt) / float64(total)
}

// NucleotideDiversity returns per-site nucleotide diversity:
// 2*p*(1-p) * n/(n-1), where p is the alternate allele frequency and n the
// number of called alleles. Zero when fewer than two alleles are called.
func (r *Record) NucleotideDiversity() float64 {
	total, alt := r.countAlleles()
	if total < 2 {
		return 0
	}
	p := float64(alt) / float64(total)
	n := float64(total)
	return 2 * p * (1 - p) * n / (n - 1)
}

// countAlleles counts called alleles and how many of those are non-reference.
func (r *Record) countAlleles() (total, alt int) {
	for _, call := range r.RawCalls() {
		if !callComplete(call) {
			continue
		}
		for _, a := range call[:len(call)-1] {
			total++
			if a > 0 {
				alt++
			}
		}
	}
	return total, alt
}

// callComplete reports whether a raw call has at least one allele slot and
// no missing alleles.
func callComplete(call []int) bool {
	if len(call) < 2 {
		return false
	}
	for _, a := range call[:len(call)-1] {
		if a < 0 {
			return false
		}
	}
	return true
}

// Variant type and subtype classifications.
const (
	TypeSNP     = "snp"
	TypeIndel   = "indel"
	TypeMNP     = "mnp"
	TypeSV      = "sv"
	TypeUnknown = "unknown"

	SubtypeTransition   = "ts"
	SubtypeTransversion = "tv"
	SubtypeInsertion    = "ins"
	SubtypeDeletion     = "del"
	SubtypeUnknown      = "unknown"
)

// Type classifies the record as snp, indel, mnp, sv or unknown, based on the
// reference allele and the first alternate allele.
func (r *Record) Type() string {
	if len(r.Alt) == 0 || r.Alt[0] == "." {
		return TypeUnknown
	}
	alt := r.Alt[0]
	if len(alt) > 0 && alt[0] == '<' {
		return TypeSV
	}
	switch {
	case len(r.Ref) == 1 && len(alt) == 1:
		return TypeSNP
	case len(r.Ref) != len(alt):
		return TypeIndel
	default:
		return TypeMNP
	}
}

// Subtype refines Type: ts/tv for SNPs, ins/del for indels, unknown
// otherwise (including multi-allelic SNP sites with mixed subtypes).
func (r *Record) Subtype() string {
	switch r.Type() {
	case TypeSNP:
		if len(r.Alt) > 1 {
			return SubtypeUnknown
		}
		if isTransition(r.Ref, r.Alt[0]) {
			return SubtypeTransition
		}
		return SubtypeTransversion
	case TypeIndel:
		if len(r.Alt[0]) > len(r.Ref) {
			return SubtypeInsertion
		}
		return SubtypeDeletion
	default:
		return SubtypeUnknown
	}
}

// isTransition reports whether a single-base substitution is a purine-purine
// or pyrimidine-pyrimidine exchange.
func isTransition(ref, alt string) bool {
	pair := ref + alt
	switch pair {
	case "AG", "GA", "CT", "TC":
		return true
	}
	return false
}
