package vcf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriter_RoundTrip(t *testing.T) {
	p := openTestParser(t)

	outPath := filepath.Join(t.TempDir(), "out.vcf")
	w, err := NewWriter(outPath, p)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	for _, r := range readAll(t, p) {
		if err := w.WriteRecord(r); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reread, err := NewParser(outPath)
	if err != nil {
		t.Fatalf("reparse output: %v", err)
	}
	defer reread.Close()

	records := readAll(t, reread)
	if len(records) != 3 {
		t.Fatalf("round trip yielded %d records, want 3", len(records))
	}
	if records[2].AltString() != "T,G" {
		t.Errorf("multi-allelic ALT lost: %q", records[2].AltString())
	}
	if records[2].QualString() != "." {
		t.Errorf("missing QUAL lost: %q", records[2].QualString())
	}
	if got := records[0].FormatField("AD"); got[0] != "5,5" {
		t.Errorf("sample data lost: %v", got)
	}
}

func TestWriter_RestrictedSamples(t *testing.T) {
	p := openTestParser(t)
	if err := p.SetSamples([]string{"s2"}); err != nil {
		t.Fatalf("SetSamples: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "out.vcf")
	w, err := NewWriter(outPath, p)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, r := range readAll(t, p) {
		if err := w.WriteRecord(r); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, "#CHROM") {
			if strings.Contains(line, "s1") {
				t.Errorf("restricted sample s1 leaked into header: %q", line)
			}
			if !strings.HasSuffix(line, "s2") {
				t.Errorf("header should end with s2: %q", line)
			}
		}
	}

	reread, err := NewParser(outPath)
	if err != nil {
		t.Fatalf("reparse output: %v", err)
	}
	defer reread.Close()
	records := readAll(t, reread)
	if got := records[0].Samples(); len(got) != 1 || got[0] != "s2" {
		t.Errorf("output samples = %v, want [s2]", got)
	}
}

func TestWriter_RewrittenID(t *testing.T) {
	p := openTestParser(t)

	outPath := filepath.Join(t.TempDir(), "out.vcf")
	w, err := NewWriter(outPath, p)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, r := range readAll(t, p) {
		r.ID = r.Chrom + "_" + "x"
		if err := w.WriteRecord(r); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reread, err := NewParser(outPath)
	if err != nil {
		t.Fatalf("reparse output: %v", err)
	}
	defer reread.Close()
	records := readAll(t, reread)
	if records[0].ID != "1_x" {
		t.Errorf("in-memory ID edit not written: %q", records[0].ID)
	}
}
