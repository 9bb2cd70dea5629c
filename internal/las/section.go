package las

import (
	"strconv"
	"strings"
)

// Section is one parsed LAS section. Raw always holds the source text,
// whether or not parsing succeeded.
type Section struct {
	Name        string // canonical name, e.g. "well" or "core_data"
	Title       string // title as declared, without "~"
	Association string // 3.0 "| assoc" target, lowercased
	Kind        SectionKind
	Line        int // line of the title

	Records []Record // header and definition sections
	Rows    []Row    // data sections
	Text    []string // text sections, body lines verbatim

	raw      string
	parseErr error
}

func newSection(name, association string, kind SectionKind, rs RawSection) *Section {
	return &Section{
		Name:        name,
		Title:       rs.Title,
		Association: association,
		Kind:        kind,
		Line:        rs.Line,
		raw:         rs.Raw,
	}
}

// Raw returns the unmodified source text of the section, title line included.
func (s *Section) Raw() string { return s.raw }

// ParseError returns the section's parse error, or nil when every line
// parsed cleanly.
func (s *Section) ParseError() error { return s.parseErr }

// Record returns the first record whose mnemonic matches, ignoring case.
func (s *Section) Record(mnemonic string) (Record, bool) {
	return findRecord(s.Records, mnemonic)
}

// Value returns the value of mnemonic, or "" when it is absent.
func (s *Section) Value(mnemonic string) string {
	r, _ := s.Record(mnemonic)
	return r.Value
}

// Has reports whether a record with mnemonic exists.
func (s *Section) Has(mnemonic string) bool {
	_, ok := s.Record(mnemonic)
	return ok
}

// Mnemonics returns the record mnemonics in file order.
func (s *Section) Mnemonics() []string {
	out := make([]string, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Mnemonic
	}
	return out
}

// ColumnNames returns the record mnemonics with repeats renamed so every
// name is unique: GR, GR_1, GR_2.
func (s *Section) ColumnNames() []string {
	return uniqueNames(s.Mnemonics())
}

func uniqueNames(names []string) []string {
	seen := make(map[string]int, len(names))
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[strings.ToUpper(n)] = true
	}
	out := make([]string, len(names))
	for i, n := range names {
		key := strings.ToUpper(n)
		count := seen[key]
		seen[key] = count + 1
		if count == 0 {
			out[i] = n
			continue
		}
		name := n + "_" + strconv.Itoa(count)
		for taken[strings.ToUpper(name)] {
			count++
			name = n + "_" + strconv.Itoa(count)
		}
		seen[key] = count + 1
		taken[strings.ToUpper(name)] = true
		out[i] = name
	}
	return out
}
