package vcf

import "strings"

// Field classes for header-declared fields.
const (
	ClassInfo   = "INFO"
	ClassFormat = "FORMAT"
)

// FieldInfo describes an INFO or FORMAT field declared in the VCF header.
type FieldInfo struct {
	ID          string
	Number      string // "1", "A", "R", "G", "." or a count
	Type        string // Integer, Float, Flag, Character, String
	Description string
	Class       string // ClassInfo or ClassFormat
}

// parseFieldInfo parses an ##INFO or ##FORMAT header line.
// Returns false for any other header line.
func parseFieldInfo(line string) (FieldInfo, bool) {
	var class string
	switch {
	case strings.HasPrefix(line, "##INFO=<"):
		class = ClassInfo
	case strings.HasPrefix(line, "##FORMAT=<"):
		class = ClassFormat
	default:
		return FieldInfo{}, false
	}

	body := line[strings.Index(line, "<")+1:]
	body = strings.TrimSuffix(body, ">")

	fi := FieldInfo{Class: class}
	for _, part := range splitHeaderFields(body) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		val := strings.Trim(kv[1], `"`)
		switch kv[0] {
		case "ID":
			fi.ID = val
		case "Number":
			fi.Number = val
		case "Type":
			fi.Type = val
		case "Description":
			fi.Description = val
		}
	}

	if fi.ID == "" {
		return FieldInfo{}, false
	}
	return fi, true
}

// splitHeaderFields splits a header declaration body on commas, keeping
// quoted sections (e.g. Description values) intact.
func splitHeaderFields(body string) []string {
	var parts []string
	var sb strings.Builder
	inQuotes := false

	for _, c := range body {
		switch {
		case c == '"':
			inQuotes = !inQuotes
			sb.WriteRune(c)
		case c == ',' && !inQuotes:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(c)
		}
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}
