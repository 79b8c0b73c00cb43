// Package vcf provides streaming VCF read/write support for the dataset layer.
package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parser reads records from a VCF file in file order. It is forward-only:
// rewinding is done by opening a new Parser for the same path.
type Parser struct {
	reader      *bufio.Reader
	file        *os.File
	gzipReader  *gzip.Reader
	lineNumber  int
	header      []string
	fieldInfo   map[string]FieldInfo
	sampleNames []string // all sample names from the #CHROM header line
	active      []int    // indices into sampleNames for materialized columns
	threads     int      // decode parallelism hint, order is never affected
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file, threads: 1}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader:  bufio.NewReader(r),
		threads: 1,
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads and stores VCF header lines, collecting INFO and FORMAT
// field declarations along the way.
func (p *Parser) parseHeader() error {
	p.fieldInfo = make(map[string]FieldInfo)

	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header = append(p.header, line)
			if fi, ok := parseFieldInfo(line); ok {
				p.fieldInfo[fi.ID] = fi
			}
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.header = append(p.header, line)
			// Sample names are the columns after FORMAT (index 9+)
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				p.sampleNames = fields[9:]
			}
			p.active = make([]int, len(p.sampleNames))
			for i := range p.active {
				p.active[i] = i
			}
			return nil
		}

		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// SetSamples restricts which sample columns are materialized per record.
// The set of emitted records is unchanged. Column order follows the order
// of ids, matching the caller's roster.
func (p *Parser) SetSamples(ids []string) error {
	byName := make(map[string]int, len(p.sampleNames))
	for i, name := range p.sampleNames {
		byName[name] = i
	}

	active := make([]int, 0, len(ids))
	for _, id := range ids {
		idx, ok := byName[id]
		if !ok {
			return fmt.Errorf("sample %q not present in vcf", id)
		}
		active = append(active, idx)
	}
	p.active = active
	return nil
}

// SetThreads records a decode-parallelism hint. It never changes the order
// or content of emitted records.
func (p *Parser) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	p.threads = n
}

// Threads returns the current decode-parallelism hint.
func (p *Parser) Threads() int {
	return p.threads
}

// Next reads the next record from the VCF file.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read record line: %w", err)
	}
	p.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return p.Next() // Skip empty lines
	}

	return p.parseLine(line)
}

// parseLine parses a single VCF data line into a Record.
func (p *Parser) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	qual := 0.0
	if fields[5] != "." {
		qual, _ = strconv.ParseFloat(fields[5], 64)
	}

	r := &Record{
		Chrom:   fields[0],
		Pos:     pos,
		ID:      fields[2],
		Ref:     fields[3],
		Alt:     strings.Split(fields[4], ","),
		Qual:    qual,
		qualRaw: fields[5],
		Filter:  fields[6],
		Info:    parseInfo(fields[7]),
		infoRaw: fields[7],
	}

	if len(fields) > 8 {
		r.Format = strings.Split(fields[8], ":")
	}

	// Materialize only the active sample columns, in roster order.
	if len(fields) > 9 && len(p.active) > 0 {
		r.samples = make([]string, len(p.active))
		r.sampleData = make([][]string, len(p.active))
		for i, idx := range p.active {
			col := 9 + idx
			if col >= len(fields) {
				return nil, &ParseError{
					Line:    p.lineNumber,
					Message: fmt.Sprintf("missing sample column %d", col+1),
				}
			}
			r.samples[i] = p.sampleNames[idx]
			r.sampleData[i] = strings.Split(fields[col], ":")
		}
	}

	return r, nil
}

// parseInfo parses the INFO field into a map. Flag-type keys map to "true".
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == "." {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		} else {
			result[parts[0]] = "true"
		}
	}

	return result
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// SampleNames returns all sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// ActiveSamples returns the names of the currently materialized sample
// columns, in roster order.
func (p *Parser) ActiveSamples() []string {
	names := make([]string, len(p.active))
	for i, idx := range p.active {
		names[i] = p.sampleNames[idx]
	}
	return names
}

// HeaderType looks up an INFO or FORMAT field declaration by ID.
func (p *Parser) HeaderType(id string) (FieldInfo, bool) {
	fi, ok := p.fieldInfo[id]
	return fi, ok
}

// InfoKeys returns the IDs of all declared INFO fields in header order.
func (p *Parser) InfoKeys() []string {
	var keys []string
	for _, line := range p.header {
		if !strings.HasPrefix(line, "##INFO=") {
			continue
		}
		if fi, ok := parseFieldInfo(line); ok {
			keys = append(keys, fi.ID)
		}
	}
	return keys
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
