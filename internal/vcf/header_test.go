package vcf

import "testing"

func TestParseFieldInfo(t *testing.T) {
	tests := []struct {
		name string
		line string
		want FieldInfo
		ok   bool
	}{
		{
			"info with quoted commas",
			`##INFO=<ID=CSQ,Number=.,Type=String,Description="VEP, one record per transcript. Format: Gene|Rank">`,
			FieldInfo{ID: "CSQ", Number: ".", Type: "String", Description: "VEP, one record per transcript. Format: Gene|Rank", Class: ClassInfo},
			true,
		},
		{
			"format field",
			`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
			FieldInfo{ID: "GT", Number: "1", Type: "String", Description: "Genotype", Class: ClassFormat},
			true,
		},
		{
			"flag",
			`##INFO=<ID=DB,Number=0,Type=Flag,Description="dbSNP membership">`,
			FieldInfo{ID: "DB", Number: "0", Type: "Flag", Description: "dbSNP membership", Class: ClassInfo},
			true,
		},
		{
			"other header line",
			`##fileformat=VCFv4.2`,
			FieldInfo{},
			false,
		},
		{
			"filter line ignored",
			`##FILTER=<ID=q10,Description="Quality below 10">`,
			FieldInfo{},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFieldInfo(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("parseFieldInfo = %+v, want %+v", got, tt.want)
			}
		})
	}
}
