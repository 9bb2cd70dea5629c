package las

import (
	"strings"
	"unicode"
)

// Supported LAS versions.
const (
	Version12 = "1.2"
	Version20 = "2.0"
	Version30 = "3.0"
)

// Canonical names of the standard sections.
const (
	SectionVersion    = "version"
	SectionWell       = "well"
	SectionCurves     = "curves"
	SectionParameters = "parameters"
	SectionOther      = "other"
	SectionData       = "data"
)

// RequiredSections are the sections whose absence fails a critical check.
var RequiredSections = []string{SectionVersion, SectionWell, SectionCurves, SectionData}

// Delimiter is the column separator of data rows.
type Delimiter int

const (
	DelimSpace Delimiter = iota
	DelimComma
	DelimTab
)

func (d Delimiter) String() string {
	switch d {
	case DelimComma:
		return "COMMA"
	case DelimTab:
		return "TAB"
	default:
		return "SPACE"
	}
}

// ParseDelimiter maps a DLM value to a Delimiter. Empty means SPACE.
func ParseDelimiter(s string) (Delimiter, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SPACE":
		return DelimSpace, true
	case "COMMA":
		return DelimComma, true
	case "TAB":
		return DelimTab, true
	}
	return DelimSpace, false
}

// SectionKind tells the record parser how to read a section body.
type SectionKind int

const (
	KindHeader     SectionKind = iota // MNEM.UNIT VALUE : DESCRIPTION lines
	KindDefinition                    // header lines that name data columns
	KindData                          // rows of values
	KindText                          // free text kept verbatim
)

func (k SectionKind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindData:
		return "data"
	case KindText:
		return "text"
	default:
		return "header"
	}
}

// VersionInfo is derived once from the Version section.
type VersionInfo struct {
	Version   string // one of Version12, Version20, Version30
	Declared  string // VERS value as written, empty when absent
	Wrap      bool
	Delimiter Delimiter
}

// sectionAliases maps every accepted spelling to a canonical name.
var sectionAliases = map[string]string{
	"v":              SectionVersion,
	"ver":            SectionVersion,
	"version":        SectionVersion,
	"w":              SectionWell,
	"well":           SectionWell,
	"c":              SectionCurves,
	"curve":          SectionCurves,
	"curves":         SectionCurves,
	"log_definition": SectionCurves,
	"p":              SectionParameters,
	"param":          SectionParameters,
	"params":         SectionParameters,
	"parameter":      SectionParameters,
	"parameters":     SectionParameters,
	"log_parameter":  SectionParameters,
	"log_parameters": SectionParameters,
	"o":              SectionOther,
	"other":          SectionOther,
	"a":              SectionData,
	"ascii":          SectionData,
	"data":           SectionData,
	"log_data":       SectionData,
}

// 1.2 and 2.0 only look at the first letter of a title.
var letterSections = map[byte]string{
	'v': SectionVersion,
	'w': SectionWell,
	'c': SectionCurves,
	'p': SectionParameters,
	'o': SectionOther,
	'a': SectionData,
}

// Well mnemonics whose value and description positions are swapped in 1.2.
var swappedWellMnemonics = map[string]bool{
	"COMP": true, "WELL": true, "FLD": true, "LOC": true, "PROV": true,
	"SRVC": true, "DATE": true, "UWI": true, "API": true,
}

type grammarRules struct {
	firstLetterTitles bool
	swapWellInfo      bool
	extendedDescr     bool // {format} and | associations after the description
	associations      bool // "~Title | Assoc" section titles
	unknownKind       SectionKind
}

var grammars = map[string]grammarRules{
	Version12: {firstLetterTitles: true, swapWellInfo: true, unknownKind: KindText},
	Version20: {firstLetterTitles: true, unknownKind: KindText},
	Version30: {extendedDescr: true, associations: true, unknownKind: KindHeader},
}

// Grammar is the version-specific rule set threaded through the record
// parser. The zero value is not usable; obtain one from GrammarFor.
type Grammar struct {
	info  VersionInfo
	rules grammarRules
}

// GrammarFor selects the grammar for info. Unknown versions get the 2.0
// rules with info.Version rewritten to 2.0.
func GrammarFor(info VersionInfo) Grammar {
	rules, ok := grammars[info.Version]
	if !ok {
		info.Version = Version20
		rules = grammars[Version20]
	}
	if info.Version != Version30 {
		info.Delimiter = DelimSpace
	}
	return Grammar{info: info, rules: rules}
}

// headerGrammar is used for the Version section of every file.
func headerGrammar() Grammar {
	return GrammarFor(VersionInfo{Version: Version20})
}

// Info returns the version facts the grammar was built from.
func (g Grammar) Info() VersionInfo { return g.info }

// CanonicalName resolves a declared section title (or a lookup key) to its
// canonical name and, for 3.0, the association named after "|".
// An empty name means the title carries no usable name.
func (g Grammar) CanonicalName(title string) (name, association string) {
	t := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(title), "~"))
	if i := strings.IndexByte(t, '|'); i >= 0 {
		if g.rules.associations {
			association = strings.ToLower(firstField(t[i+1:]))
		}
		t = t[:i]
	}
	word := strings.ToLower(firstField(t))
	if word == "" {
		return "", association
	}
	if n, ok := sectionAliases[word]; ok {
		return n, association
	}
	if g.rules.firstLetterTitles {
		if n, ok := letterSections[word[0]]; ok {
			return n, association
		}
	}
	return word, association
}

// KindOf returns how a section with the canonical name is parsed.
func (g Grammar) KindOf(name string) SectionKind {
	switch name {
	case SectionVersion, SectionWell, SectionParameters:
		return KindHeader
	case SectionCurves:
		return KindDefinition
	case SectionData:
		return KindData
	case SectionOther:
		return KindText
	}
	switch {
	case strings.HasSuffix(name, "_definition"):
		return KindDefinition
	case strings.HasSuffix(name, "_data"):
		return KindData
	case strings.HasSuffix(name, "_parameter"), strings.HasSuffix(name, "_parameters"):
		return KindHeader
	}
	return g.rules.unknownKind
}

// DefinitionFor names the definition section that supplies the columns of
// data section name. An explicit 3.0 association wins.
func (g Grammar) DefinitionFor(name, association string) string {
	if association != "" {
		if n, _ := g.CanonicalName(association); n != "" {
			return n
		}
	}
	if name == SectionData {
		return SectionCurves
	}
	if prefix, ok := strings.CutSuffix(name, "_data"); ok {
		return prefix + "_definition"
	}
	return SectionCurves
}

// swaps reports whether mnemonic in section has its value written after
// the colon.
func (g Grammar) swaps(section, mnemonic string) bool {
	return g.rules.swapWellInfo && section == SectionWell &&
		swappedWellMnemonics[strings.ToUpper(mnemonic)]
}

func firstField(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i]
	}
	return s
}
