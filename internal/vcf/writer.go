package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Writer writes VCF records to a new file, using an open Parser as the
// header template. Records are written in the order given. Sample columns
// follow the template's active roster.
type Writer struct {
	w          *bufio.Writer
	file       *os.File
	gzipWriter *gzip.Writer
	samples    []string
}

// NewWriter creates a VCF writer at path, copying the template's header.
// Paths ending in .gz are gzip-compressed. The #CHROM line is rewritten to
// the template's active sample columns.
func NewWriter(path string, template *Parser) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create vcf file: %w", err)
	}

	w := &Writer{file: file, samples: template.ActiveSamples()}
	if strings.HasSuffix(path, ".gz") {
		w.gzipWriter = gzip.NewWriter(file)
		w.w = bufio.NewWriter(w.gzipWriter)
	} else {
		w.w = bufio.NewWriter(file)
	}

	if err := w.writeHeader(template.Header()); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader(header []string) error {
	for _, line := range header {
		if strings.HasPrefix(line, "#CHROM") {
			line = w.chromLine()
		}
		if _, err := w.w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	return nil
}

// chromLine builds the #CHROM header line for the active sample roster.
func (w *Writer) chromLine() string {
	cols := []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}
	if len(w.samples) > 0 {
		cols = append(cols, "FORMAT")
		cols = append(cols, w.samples...)
	}
	return strings.Join(cols, "\t")
}

// WriteRecord writes one record. The record's current field values are
// written, so in-memory edits (e.g. an assigned ID) reach the file.
func (w *Writer) WriteRecord(r *Record) error {
	cols := []string{
		r.Chrom,
		strconv.FormatInt(r.Pos, 10),
		r.ID,
		r.Ref,
		r.AltString(),
		r.QualString(),
		r.Filter,
		r.InfoString(),
	}

	if len(r.Format) > 0 && len(r.sampleData) > 0 {
		cols = append(cols, strings.Join(r.Format, ":"))
		for _, data := range r.sampleData {
			cols = append(cols, strings.Join(data, ":"))
		}
	}

	if _, err := w.w.WriteString(strings.Join(cols, "\t") + "\n"); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Close flushes and closes the output file.
func (w *Writer) Close() error {
	var firstErr error
	if err := w.w.Flush(); err != nil {
		firstErr = err
	}
	if w.gzipWriter != nil {
		if err := w.gzipWriter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := w.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
