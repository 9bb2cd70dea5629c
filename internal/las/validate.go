package las

import (
	"errors"
	"fmt"
	"strings"
)

// Target is anything Check can evaluate: a *File or a *Section.
type Target interface {
	check(r *Result, criticalOnly bool)
}

// Result is the outcome of a check. It is computed on demand and never
// cached on the target.
type Result struct {
	Missing  []string  // required sections that are absent
	Findings []Finding // every other problem, in discovery order
}

// OK reports whether the check passed.
func (r Result) OK() bool { return len(r.Missing) == 0 && len(r.Findings) == 0 }

// Err summarises a failed result as a KindValidate *Error, or returns nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Findings)+1)
	if len(r.Missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSection, strings.Join(r.Missing, ", ")))
	}
	for _, f := range r.Findings {
		errs = append(errs, f)
	}
	return &Error{
		Kind:     KindValidate,
		Critical: r.critical(),
		Msg:      fmt.Sprintf("%d missing section(s), %d finding(s)", len(r.Missing), len(r.Findings)),
		Err:      errors.Join(errs...),
	}
}

func (r Result) critical() bool {
	if len(r.Missing) > 0 {
		return true
	}
	for _, f := range r.Findings {
		if f.Critical {
			return true
		}
	}
	return false
}

func (r *Result) add(section string, line int, critical bool, err error) {
	r.Findings = append(r.Findings, Finding{Section: section, Line: line, Critical: critical, Err: err})
}

// Check evaluates target. With criticalOnly set, a File fails only when a
// required section is missing or its open, read, split or version stage
// failed. Otherwise every section parse error, every split finding and the
// mnemonic rules of the Version and Well sections are checked as well.
// A Section target only evaluates its own parse error.
func Check(target Target, criticalOnly bool) Result {
	var r Result
	if target != nil {
		target.check(&r, criticalOnly)
	}
	return r
}

func (s *Section) check(r *Result, _ bool) {
	if s == nil {
		return
	}
	if s.parseErr != nil {
		r.add(s.Name, 0, isRequired(s.Name), s.parseErr)
	}
}

func (f *File) check(r *Result, criticalOnly bool) {
	if f == nil {
		return
	}
	for _, name := range RequiredSections {
		if _, ok := f.sections[name]; !ok {
			r.Missing = append(r.Missing, name)
		}
	}
	// Missing sections are already listed above, so only the structural
	// part of the split slot is added.
	for _, err := range []error{f.openErr, f.readErr, f.splitErr, f.versionErr} {
		if err != nil {
			r.add("", 0, true, err)
		}
	}
	if criticalOnly {
		return
	}

	r.Findings = append(r.Findings, f.findings...)
	for _, name := range f.order {
		f.sections[name].check(r, false)
	}
	if vs := f.VersionSection(); vs != nil {
		checkVersionMnemonics(r, vs, f.info)
	}
	if ws := f.Well(); ws != nil {
		checkWellMnemonics(r, ws, f.info.Version)
	}
	f.checkCongruency(r)
}

// Validate runs Check and stores a failure in the validate slot. It is the
// only operation that changes a File after Parse.
func (f *File) Validate(criticalOnly bool) Result {
	r := Check(f, criticalOnly)
	f.validateErr = r.Err()
	return r
}

func checkVersionMnemonics(r *Result, vs *Section, info VersionInfo) {
	required := []string{"VERS", "WRAP"}
	if info.Version == Version30 {
		required = append(required, "DLM")
	}
	if missing := missingMnemonics(vs, required...); len(missing) > 0 {
		r.add(vs.Name, 0, true, fmt.Errorf("%w: %s", ErrMissingMnemonic, strings.Join(missing, ", ")))
	}
	if rec, ok := vs.Record("WRAP"); ok {
		v := strings.ToUpper(strings.TrimSpace(rec.Value))
		if v != "YES" && v != "NO" {
			r.add(vs.Name, rec.Line, false, fmt.Errorf("%w: WRAP %q must be YES or NO", ErrInvalidValue, rec.Value))
		}
	}
	if info.Version == Version30 {
		if rec, ok := vs.Record("DLM"); ok {
			if _, valid := ParseDelimiter(rec.Value); !valid {
				r.add(vs.Name, rec.Line, false,
					fmt.Errorf("%w: DLM %q must be SPACE, COMMA or TAB", ErrInvalidValue, rec.Value))
			}
		}
	}
}

var wellMnemonics = []string{"STRT", "STOP", "STEP", "NULL", "COMP", "WELL", "FLD", "LOC", "SRVC", "DATE"}

func checkWellMnemonics(r *Result, ws *Section, version string) {
	var missing []string
	required := wellMnemonics
	if version == Version30 {
		required = append(append([]string(nil), wellMnemonics...), "CTRY")
	}
	missing = append(missing, missingMnemonics(ws, required...)...)

	switch version {
	case Version30:
		latLong := missingMnemonics(ws, "LATI", "LONG", "GDAT")
		xy := missingMnemonics(ws, "X", "Y", "GDAT", "HZCS")
		if len(latLong) > 0 && len(xy) > 0 {
			if len(xy) < len(latLong) {
				missing = append(missing, xy...)
			} else {
				missing = append(missing, latLong...)
			}
		}
		switch country := strings.ToUpper(ws.Value("CTRY")); country {
		case "CA":
			missing = append(missing, oneOf(ws, "PROV", "UWI", "LIC")...)
		case "US":
			missing = append(missing, oneOf(ws, "STAT", "CNTY", "API")...)
		case "":
		default:
			rec, _ := ws.Record("CTRY")
			r.add(ws.Name, rec.Line, false,
				fmt.Errorf("%w: CTRY %q is not a supported country code", ErrInvalidValue, country))
		}
	default:
		if !ws.Has("PROV") {
			missing = append(missing, oneOf(ws, "CNTY", "STAT", "CTRY")...)
		}
		missing = append(missing, oneOf(ws, "API", "UWI")...)
	}

	if len(missing) > 0 {
		r.add(ws.Name, 0, false, fmt.Errorf("%w: %s", ErrMissingMnemonic, strings.Join(missing, ", ")))
	}
}

// oneOf returns all of mnemonics when none of them is present.
func oneOf(s *Section, mnemonics ...string) []string {
	for _, m := range mnemonics {
		if s.Has(m) {
			return nil
		}
	}
	return mnemonics
}

func missingMnemonics(s *Section, mnemonics ...string) []string {
	var out []string
	for _, m := range mnemonics {
		if !s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// checkCongruency compares every data section with its definition section.
func (f *File) checkCongruency(r *Result) {
	for _, name := range f.order {
		sec := f.sections[name]
		if sec.Kind != KindData {
			continue
		}
		defName := f.grammar.DefinitionFor(sec.Name, sec.Association)
		def, ok := f.sections[defName]
		if !ok {
			continue
		}
		columns := len(def.Records)
		for _, row := range sec.Rows {
			if len(row.Values) != columns {
				r.add(sec.Name, row.Line, true, fmt.Errorf(
					"%w: %s defines %d curves but data rows have %d values",
					ErrColumnMismatch, defName, columns, len(row.Values)))
				break
			}
		}
	}
}
