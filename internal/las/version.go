package las

import (
	"strconv"
	"strings"
)

var knownVersions = map[string]bool{Version12: true, Version20: true, Version30: true}

// ResolveVersion reads VERS, WRAP and DLM from a Version section. The
// section is always parsed with the 2.0 grammar.
//
// When the version is missing or unsupported the returned error is a
// KindVersion *Error and the info falls back to 2.0, so parsing can go on.
func ResolveVersion(rs RawSection) (VersionInfo, error) {
	records, _ := ParseHeader(SectionVersion, rs, headerGrammar())
	return resolveVersion(records)
}

func resolveVersion(records []Record) (VersionInfo, error) {
	info := VersionInfo{Version: Version20}
	var verr error

	if rec, ok := findRecord(records, "VERS"); ok {
		info.Declared = rec.Value
		if v, ok := normalizeVersion(rec.Value); ok {
			info.Version = v
		} else {
			verr = newError(KindVersion, SectionVersion, rec.Line, ErrUnknownVersion,
				"VERS %q is not one of 1.2, 2.0, 3.0; using 2.0 rules", rec.Value)
		}
	} else {
		verr = newError(KindVersion, SectionVersion, 0, ErrMissingVERS, "using 2.0 rules")
	}

	if rec, ok := findRecord(records, "WRAP"); ok {
		info.Wrap = strings.EqualFold(strings.TrimSpace(rec.Value), "YES")
	}
	if info.Version == Version30 {
		if rec, ok := findRecord(records, "DLM"); ok {
			info.Delimiter, _ = ParseDelimiter(rec.Value)
		}
		// 3.0 forbids wrapped data.
		info.Wrap = false
	}
	return info, verr
}

// normalizeVersion accepts "2.0", " 2.0 ", "2", "2.00" and similar spellings.
func normalizeVersion(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if f := firstField(s); f != "" {
		s = f
	}
	if knownVersions[s] {
		return s, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	v := strconv.FormatFloat(f, 'f', 1, 64)
	if back, _ := strconv.ParseFloat(v, 64); back != f || !knownVersions[v] {
		return "", false
	}
	return v, true
}

func findRecord(records []Record, mnemonic string) (Record, bool) {
	for _, r := range records {
		if strings.EqualFold(r.Mnemonic, mnemonic) {
			return r, true
		}
	}
	return Record{}, false
}
