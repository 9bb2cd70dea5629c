package las

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// File is a loaded LAS file. It is built once by Parse (or by one of the
// failure constructors) and is read-only afterwards, except for the validate
// slot written by Validate.
type File struct {
	Path string

	raw      string
	info     VersionInfo
	grammar  Grammar
	sections map[string]*Section
	order    []string
	findings []Finding

	openErr     error
	readErr     error
	splitErr    error // structural split problems
	missingErr  error // required sections that did not split
	versionErr  error
	parseErr    error
	validateErr error
}

// Option adjusts how Parse works.
type Option func(*parseOptions)

type parseOptions struct {
	parallel bool
}

// WithParallel parses independent sections concurrently. Definition and
// header sections are parsed first, data sections after them. The result
// is identical to a sequential parse.
func WithParallel() Option {
	return func(o *parseOptions) { o.parallel = true }
}

// NewOpenFailure returns a File whose open slot holds err. Such a file has
// no sections.
func NewOpenFailure(path string, err error) *File {
	f := emptyFile(path)
	f.openErr = newError(KindOpen, "", 0, err, "cannot open %q", path)
	return f
}

// NewReadFailure returns a File whose read slot holds err.
func NewReadFailure(path string, err error) *File {
	f := emptyFile(path)
	f.readErr = newError(KindRead, "", 0, err, "cannot read %q", path)
	return f
}

func emptyFile(path string) *File {
	info := VersionInfo{Version: Version20}
	return &File{
		Path:     path,
		info:     info,
		grammar:  GrammarFor(info),
		sections: make(map[string]*Section),
	}
}

// Parse builds a File from decoded text. It never fails: every problem is
// recorded in the File's error slots and section parse errors.
func Parse(path, text string, opts ...Option) *File {
	var o parseOptions
	for _, fn := range opts {
		fn(&o)
	}

	f := emptyFile(path)
	f.raw = text

	split := Split(text)
	f.splitErr = split.Err

	var version parsedVersion
	if vs, ok := split.VersionSection(); ok {
		version.line = vs.Line
		version.records, version.err = ParseHeader(SectionVersion, vs, headerGrammar())
		f.info, f.versionErr = resolveVersion(version.records)
	} else if len(split.Sections) > 0 {
		f.versionErr = newError(KindVersion, "", 0, ErrMissingVersionSection, "using 2.0 rules")
	}
	f.grammar = GrammarFor(f.info)
	f.info = f.grammar.Info()

	pending := f.assemble(split.Sections)
	if len(split.Sections) > 0 {
		f.missingErr = f.missingSections()
	}
	f.parseSections(pending, version, o.parallel)
	return f
}

// missingSections reports the required sections absent after assembly as a
// split error. The sections that did split stay available.
func (f *File) missingSections() error {
	var missing []string
	for _, name := range RequiredSections {
		if _, ok := f.sections[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return newError(KindSplit, "", 0,
		fmt.Errorf("%w: %s", ErrMissingSection, strings.Join(missing, ", ")),
		"cannot split into the minimum required sections")
}

// parsedVersion keeps the Version section records read during version
// resolution so they are not parsed twice.
type parsedVersion struct {
	line    int
	records []Record
	err     error
}

type pendingSection struct {
	sec *Section
	rs  RawSection
}

// assemble canonicalizes the raw sections and records duplicates. A later
// section with the same canonical name replaces the earlier one.
func (f *File) assemble(raws []RawSection) []pendingSection {
	index := make(map[string]int, len(raws))
	var pending []pendingSection

	for _, rs := range raws {
		name, assoc := f.grammar.CanonicalName(rs.Title)
		if name == "" {
			continue
		}
		sec := newSection(name, assoc, f.grammar.KindOf(name), rs)
		if i, dup := index[name]; dup {
			f.findings = append(f.findings, Finding{
				Section: name,
				Line:    rs.Line,
				Err: fmt.Errorf("%w: %q at line %d replaces the section at line %d",
					ErrDuplicateSection, rs.Title, rs.Line, pending[i].rs.Line),
			})
			pending = append(pending[:i], pending[i+1:]...)
			for n, j := range index {
				if j > i {
					index[n] = j - 1
				}
			}
		}
		index[name] = len(pending)
		pending = append(pending, pendingSection{sec: sec, rs: rs})
	}

	for _, p := range pending {
		f.sections[p.sec.Name] = p.sec
		f.order = append(f.order, p.sec.Name)
	}
	return pending
}

func (f *File) parseSections(pending []pendingSection, version parsedVersion, parallel bool) {
	var first, data []pendingSection
	for _, p := range pending {
		if p.sec.Kind == KindData {
			data = append(data, p)
		} else {
			first = append(first, p)
		}
	}

	run := func(batch []pendingSection, parse func(pendingSection)) {
		if !parallel || len(batch) < 2 {
			for _, p := range batch {
				parse(p)
			}
			return
		}
		var g errgroup.Group
		for _, p := range batch {
			g.Go(func() error {
				parse(p)
				return nil
			})
		}
		_ = g.Wait()
	}

	run(first, func(p pendingSection) {
		if p.sec.Name != SectionVersion {
			f.parseOne(p)
			return
		}
		records, err := version.records, version.err
		if p.rs.Line != version.line {
			records, err = ParseHeader(SectionVersion, p.rs, headerGrammar())
		}
		p.sec.Records = records
		p.sec.parseErr = f.versionAnomalies(p.sec, err)
	})
	run(data, f.parseOne)

	var errs []error
	for _, name := range f.order {
		if err := f.sections[name].parseErr; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		f.parseErr = &Error{
			Kind: KindParse,
			Msg:  fmt.Sprintf("%d section(s) with parse errors", len(errs)),
			Err:  errors.Join(errs...),
		}
	}
}

// versionAnomalies adds 3.0 rule violations of the Version section to its
// parse error.
func (f *File) versionAnomalies(sec *Section, parseErr error) error {
	if f.info.Version != Version30 {
		return parseErr
	}
	wrap, ok := sec.Record("WRAP")
	if !ok || strings.EqualFold(wrap.Value, "NO") {
		return parseErr
	}
	perr, _ := parseErr.(*ParseError)
	if perr == nil {
		perr = &ParseError{Section: SectionVersion, Critical: true}
	}
	perr.add(wrap.Line, wrap.Value, fmt.Errorf("%w: WRAP must be NO in 3.0", ErrInvalidValue))
	return perr
}

func (f *File) parseOne(p pendingSection) {
	sec := p.sec
	switch sec.Kind {
	case KindHeader, KindDefinition:
		sec.Records, sec.parseErr = ParseHeader(sec.Name, p.rs, f.grammar)
	case KindData:
		columns := 0
		if def, ok := f.sections[f.grammar.DefinitionFor(sec.Name, sec.Association)]; ok {
			columns = len(def.Records)
		}
		sec.Rows, sec.parseErr = ParseData(sec.Name, p.rs, columns, f.grammar)
	case KindText:
		sec.Text = append([]string(nil), p.rs.Body...)
	}
}

// Raw returns the decoded source text.
func (f *File) Raw() string { return f.raw }

// VersionInfo returns the resolved version facts. Files whose version could
// not be resolved report 2.0, the grammar they were parsed with.
func (f *File) VersionInfo() VersionInfo { return f.info }

// Sections returns the sections in the order they appear in the file.
func (f *File) Sections() []*Section {
	out := make([]*Section, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.sections[name])
	}
	return out
}

// Section looks a section up by name. Lookup ignores case and accepts the
// same synonyms as section titles, so "Params", "parameters" and
// "Log_Parameter" all find the Parameters section.
func (f *File) Section(name string) (*Section, bool) {
	key, _ := f.grammar.CanonicalName(name)
	if key == "" {
		return nil, false
	}
	s, ok := f.sections[key]
	return s, ok
}

func (f *File) named(name string) *Section {
	s, _ := f.Section(name)
	return s
}

// VersionSection returns the Version section, or nil.
func (f *File) VersionSection() *Section { return f.named(SectionVersion) }

// Well returns the Well section, or nil.
func (f *File) Well() *Section { return f.named(SectionWell) }

// Curves returns the Curves (3.0 Log_Definition) section, or nil.
func (f *File) Curves() *Section { return f.named(SectionCurves) }

// Parameters returns the Parameters section, or nil.
func (f *File) Parameters() *Section { return f.named(SectionParameters) }

// Other returns the Other section, or nil.
func (f *File) Other() *Section { return f.named(SectionOther) }

// Data returns the data section (~A, 3.0 Log_Data), or nil.
func (f *File) Data() *Section { return f.named(SectionData) }

// Findings returns the non-fatal observations made while splitting.
func (f *File) Findings() []Finding { return append([]Finding(nil), f.findings...) }

func (f *File) OpenError() error     { return f.openErr }
func (f *File) ReadError() error     { return f.readErr }
func (f *File) VersionError() error  { return f.versionErr }
func (f *File) ValidateError() error { return f.validateErr }

// SplitError returns the split slot: a file with no usable section titles,
// or one missing any of RequiredSections.
func (f *File) SplitError() error {
	switch {
	case f.splitErr == nil:
		return f.missingErr
	case f.missingErr == nil:
		return f.splitErr
	}
	return errors.Join(f.splitErr, f.missingErr)
}

// ParseError joins the parse errors of every section.
func (f *File) ParseError() error { return f.parseErr }

// Errors lists every populated error slot. Section parse errors are listed
// one by one instead of the joined parse slot.
func (f *File) Errors() []ErrorEntry {
	var out []ErrorEntry
	add := func(kind ErrorKind, section string, err error) {
		if err != nil {
			out = append(out, ErrorEntry{Slot: kind, Section: section, Err: err})
		}
	}
	add(KindOpen, "", f.openErr)
	add(KindRead, "", f.readErr)
	add(KindSplit, "", f.SplitError())
	add(KindVersion, "", f.versionErr)
	for _, name := range f.order {
		add(KindParse, name, f.sections[name].parseErr)
	}
	add(KindValidate, "", f.validateErr)
	return out
}

// Err joins every entry of Errors, or returns nil when there are none.
func (f *File) Err() error {
	entries := f.Errors()
	if len(entries) == 0 {
		return nil
	}
	errs := make([]error, len(entries))
	for i, e := range entries {
		errs[i] = e.Err
	}
	return errors.Join(errs...)
}
