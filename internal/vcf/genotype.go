package vcf

import "strings"

// alleleSymbols maps allele indices to their display symbols. Any index
// outside the table (including the -1 missing marker) renders as Missing.
var alleleSymbols = [...]string{"0", "1", "2", "3"}

// Missing is the display symbol for an uncalled or out-of-range allele.
const Missing = "."

// Genotype is the immutable decoded call of one sample at one variant:
// the ordered allele indices and whether the call is phased.
type Genotype struct {
	Alleles []int
	Phased  bool
}

// DecodeGenotype decodes a raw per-sample call: allele indices terminated
// by a phase flag, the layout produced by Record.RawCalls. A nil or
// too-short call decodes to an empty unphased genotype.
func DecodeGenotype(raw []int) Genotype {
	if len(raw) < 2 {
		return Genotype{}
	}
	alleles := make([]int, len(raw)-1)
	copy(alleles, raw[:len(raw)-1])
	return Genotype{
		Alleles: alleles,
		Phased:  raw[len(raw)-1] != 0,
	}
}

// String renders the genotype with `/` (unphased) or `|` (phased) between
// allele symbols. Out-of-range allele indices render as Missing.
func (g Genotype) String() string {
	sep := "/"
	if g.Phased {
		sep = "|"
	}

	symbols := make([]string, len(g.Alleles))
	for i, a := range g.Alleles {
		symbols[i] = alleleSymbol(a)
	}
	return strings.Join(symbols, sep)
}

func alleleSymbol(a int) string {
	if a < 0 || a >= len(alleleSymbols) {
		return Missing
	}
	return alleleSymbols[a]
}

// parseCall parses a GT field value ("0/1", "0|1", ".", "1/.") into a raw
// call: allele indices (-1 for missing) terminated by a phase flag.
// An empty or absent GT yields a single missing allele.
func parseCall(gt string) []int {
	phased := strings.ContainsRune(gt, '|')

	var tokens []string
	if gt == "" {
		tokens = []string{"."}
	} else {
		tokens = strings.FieldsFunc(gt, func(c rune) bool {
			return c == '/' || c == '|'
		})
	}

	call := make([]int, 0, len(tokens)+1)
	for _, tok := range tokens {
		call = append(call, parseAllele(tok))
	}
	if phased {
		call = append(call, 1)
	} else {
		call = append(call, 0)
	}
	return call
}

func parseAllele(tok string) int {
	if tok == "" || tok == "." {
		return -1
	}
	n := 0
	for _, c := range tok {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}
