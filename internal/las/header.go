package las

import (
	"fmt"
	"strings"
	"unicode"
)

// Record is one parsed metadata line: MNEM.UNIT VALUE : DESCRIPTION.
type Record struct {
	Mnemonic     string
	Unit         string
	Value        string
	Description  string
	Format       string   // 3.0 "{F}" format code
	Associations []string // 3.0 "| A,B" associations
	Line         int
	Err          error // set when the line is malformed; fields are best-effort
}

// ParseHeaderLine parses a single metadata line.
//
// The mnemonic ends at the first ".", the unit at the first whitespace after
// it. The value ends at the first colon that is preceded by whitespace, or at
// the last colon when no colon is preceded by whitespace, so values such as
// "10:30" survive intact. The 1.2 value/description swap is applied by
// ParseHeader, which knows the section.
func ParseHeaderLine(line string, g Grammar) Record {
	var rec Record
	s := strings.TrimSpace(line)

	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		if c := strings.IndexByte(s, ':'); c >= 0 {
			rec.Mnemonic = strings.TrimSpace(s[:c])
			rec.Description = strings.TrimSpace(s[c+1:])
		} else {
			rec.Mnemonic = firstField(s)
		}
		rec.Err = fmt.Errorf("%w: no '.' after mnemonic", ErrMalformedLine)
		return rec
	}
	rec.Mnemonic = strings.TrimSpace(s[:dot])
	rest := s[dot+1:]

	unitEnd := strings.IndexFunc(rest, unicode.IsSpace)
	if unitEnd < 0 {
		unitEnd = strings.LastIndexByte(rest, ':')
		if unitEnd < 0 {
			unitEnd = len(rest)
		}
	}
	rec.Unit = rest[:unitEnd]
	tail := rest[unitEnd:]

	c := delimiterColon(tail)
	if c < 0 {
		rec.Value = strings.TrimSpace(tail)
		rec.Err = fmt.Errorf("%w: no ':' before description", ErrMalformedLine)
		return rec
	}
	rec.Value = strings.TrimSpace(tail[:c])
	descr := strings.TrimSpace(tail[c+1:])

	if g.rules.extendedDescr {
		descr, rec.Format, rec.Associations = splitExtendedDescription(descr)
	}
	rec.Description = descr
	if rec.Mnemonic == "" {
		rec.Err = fmt.Errorf("%w: empty mnemonic", ErrMalformedLine)
	}
	return rec
}

func delimiterColon(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t') {
			return i
		}
	}
	return strings.LastIndexByte(s, ':')
}

// splitExtendedDescription separates "descr {F} | a,b" into its parts.
func splitExtendedDescription(s string) (descr, format string, assocs []string) {
	descr = s
	if lb := strings.IndexByte(descr, '{'); lb >= 0 {
		if rb := strings.LastIndexByte(descr, '}'); rb > lb {
			format = strings.TrimSpace(descr[lb+1 : rb])
			descr = descr[:lb] + descr[rb+1:]
		}
	}
	if bar := strings.IndexByte(descr, '|'); bar >= 0 {
		for _, a := range strings.Split(descr[bar+1:], ",") {
			if a = strings.TrimSpace(a); a != "" {
				assocs = append(assocs, a)
			}
		}
		descr = descr[:bar]
	}
	return strings.TrimSpace(descr), format, assocs
}

// ParseHeader parses every metadata line of a header or definition section.
// Blank and "#" comment lines are skipped. Malformed lines are kept as
// best-effort records and reported in the returned error.
func ParseHeader(name string, rs RawSection, g Grammar) ([]Record, error) {
	perr := &ParseError{Section: name, Critical: isRequired(name)}
	records := make([]Record, 0, len(rs.Body))

	for i, line := range rs.Body {
		if skipLine(line) {
			continue
		}
		rec := ParseHeaderLine(line, g)
		rec.Line = rs.BodyLine(i)
		if g.swaps(name, rec.Mnemonic) {
			rec.Value, rec.Description = rec.Description, rec.Value
		}
		if rec.Err != nil {
			perr.add(rec.Line, strings.TrimSpace(line), rec.Err)
		}
		records = append(records, rec)
	}
	return records, perr.orNil()
}

func skipLine(line string) bool {
	s := strings.TrimSpace(line)
	return s == "" || s[0] == '#'
}

func isRequired(name string) bool {
	for _, r := range RequiredSections {
		if r == name {
			return true
		}
	}
	return false
}
