package dataset

import (
	"strings"

	"github.com/vcftk/vcftk/internal/table"
)

// idSeparator joins the positional fields of a derived variant ID.
const idSeparator = "_"

// BuildVariantIDs derives one ID per variant metadata row by joining CHROM
// and POS (and REF and ALT when useAlleles is set) with a fixed separator.
// It is a pure function of the table contents: no deduplication, no
// uniquification, no I/O. Callers check the result with CheckIDs.
func BuildVariantIDs(meta *table.Table, useAlleles bool) []string {
	ids := make([]string, meta.NRows())
	for i := range ids {
		parts := []string{meta.Cell(i, "CHROM"), meta.Cell(i, "POS")}
		if useAlleles {
			parts = append(parts, meta.Cell(i, "REF"), meta.Cell(i, "ALT"))
		}
		ids[i] = strings.Join(parts, idSeparator)
	}
	return ids
}

// IDReport describes data-quality problems in a derived ID sequence.
// Duplicate or empty IDs are a warning condition, not an error: the caller
// decides whether to rebuild IDs before relying on ID-keyed lookups.
type IDReport struct {
	Duplicates map[string]int // ID -> occurrence count, only entries > 1
	Empty      int            // count of empty or "." IDs
}

// HasIssues reports whether the ID sequence has duplicates or empties.
func (r IDReport) HasIssues() bool {
	return len(r.Duplicates) > 0 || r.Empty > 0
}

// CheckIDs scans an ID sequence for duplicates and empty values.
func CheckIDs(ids []string) IDReport {
	report := IDReport{Duplicates: make(map[string]int)}
	counts := make(map[string]int, len(ids))

	for _, id := range ids {
		if id == "" || id == "." {
			report.Empty++
			continue
		}
		counts[id]++
	}
	for id, n := range counts {
		if n > 1 {
			report.Duplicates[id] = n
		}
	}
	return report
}
