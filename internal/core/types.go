package core

import (
	"errors"

	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/store"
)

// Service errors. ErrRejected wraps the failed check result.
var (
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFile       = errors.New("empty file")
	ErrRejected        = errors.New("file rejected by critical check")
	ErrSectionNotFound = errors.New("section not found")
)

// Issue is one problem found by a check, flattened for JSON and templates.
type Issue struct {
	Section  string `json:"section,omitempty" yaml:"section,omitempty" toml:"section,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
	Critical bool   `json:"critical" yaml:"critical" toml:"critical"`
	Message  string `json:"message" yaml:"message" toml:"message"`
	Code     string `json:"code" yaml:"code" toml:"code"`
}

// CheckReport is a las.Result prepared for display.
type CheckReport struct {
	OK           bool     `json:"ok" yaml:"ok" toml:"ok"`
	CriticalOnly bool     `json:"critical_only" yaml:"critical_only" toml:"critical_only"`
	Missing      []string `json:"missing,omitempty" yaml:"missing,omitempty" toml:"missing,omitempty"`
	Issues       []Issue  `json:"issues,omitempty" yaml:"issues,omitempty" toml:"issues,omitempty"`
}

// NewCheckReport converts a check result.
func NewCheckReport(r las.Result, criticalOnly bool) CheckReport {
	rep := CheckReport{OK: r.OK(), CriticalOnly: criticalOnly, Missing: r.Missing}
	for _, f := range r.Findings {
		rep.Issues = append(rep.Issues, Issue{
			Section:  f.Section,
			Line:     f.Line,
			Critical: f.Critical,
			Message:  f.Error(),
			Code:     MapError(f.Err).Code,
		})
	}
	return rep
}

// StageError is one populated error slot of a loaded file.
type StageError struct {
	Slot    string `json:"slot" yaml:"slot" toml:"slot"`
	Section string `json:"section,omitempty" yaml:"section,omitempty" toml:"section,omitempty"`
	Message string `json:"message" yaml:"message" toml:"message"`
	Code    string `json:"code" yaml:"code" toml:"code"`
}

// StageErrors lists the populated error slots of f.
func StageErrors(f *las.File) []StageError {
	var out []StageError
	for _, e := range f.Errors() {
		out = append(out, StageError{
			Slot:    e.Slot.String(),
			Section: e.Section,
			Message: e.Err.Error(),
			Code:    MapError(e.Err).Code,
		})
	}
	return out
}

// IngestResult is returned by Service.Ingest.
type IngestResult struct {
	File   store.FileRecord `json:"file"`
	Check  CheckReport      `json:"check"`
	Errors []StageError     `json:"errors,omitempty"`
}

// CheckResult is returned by Service.Check. Nothing is stored.
type CheckResult struct {
	Name    string       `json:"name"`
	Version string       `json:"version"`
	Check   CheckReport  `json:"check"`
	Errors  []StageError `json:"errors,omitempty"`
}

// SectionSummary lists one section of a stored file.
type SectionSummary struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Association string `json:"association,omitempty"`
	Kind        string `json:"kind"`
	Line        int    `json:"line"`
	Records     int    `json:"records,omitempty"`
	Rows        int    `json:"rows,omitempty"`
	Error       string `json:"error,omitempty"`
}

// FileView is a stored file with its parsed structure.
type FileView struct {
	store.FileRecord
	Sections []SectionSummary `json:"sections"`
	Errors   []StageError     `json:"errors,omitempty"`
}

// RecordView is a header record for JSON output.
type RecordView struct {
	Mnemonic     string   `json:"mnemonic" yaml:"mnemonic" toml:"mnemonic"`
	Unit         string   `json:"unit,omitempty" yaml:"unit,omitempty" toml:"unit,omitempty"`
	Value        string   `json:"value" yaml:"value" toml:"value"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Format       string   `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
	Associations []string `json:"associations,omitempty" yaml:"associations,omitempty" toml:"associations,omitempty"`
	Line         int      `json:"line" yaml:"line" toml:"line"`
	Error        string   `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// RowView is a data row for JSON output.
type RowView struct {
	Line   int      `json:"line" yaml:"line" toml:"line"`
	Values []string `json:"values" yaml:"values" toml:"values"`
	Error  string   `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// SectionView is one section in full.
type SectionView struct {
	Name        string       `json:"name" yaml:"name" toml:"name"`
	Title       string       `json:"title" yaml:"title" toml:"title"`
	Association string       `json:"association,omitempty" yaml:"association,omitempty" toml:"association,omitempty"`
	Kind        string       `json:"kind" yaml:"kind" toml:"kind"`
	Line        int          `json:"line" yaml:"line" toml:"line"`
	Records     []RecordView `json:"records,omitempty" yaml:"records,omitempty" toml:"records,omitempty"`
	Rows        []RowView    `json:"rows,omitempty" yaml:"rows,omitempty" toml:"rows,omitempty"`
	Text        []string     `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Raw         string       `json:"raw" yaml:"raw" toml:"raw"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// SummarizeSection lists s without its records or rows.
func SummarizeSection(s *las.Section) SectionSummary {
	return SectionSummary{
		Name:        s.Name,
		Title:       s.Title,
		Association: s.Association,
		Kind:        s.Kind.String(),
		Line:        s.Line,
		Records:     len(s.Records),
		Rows:        len(s.Rows),
		Error:       errString(s.ParseError()),
	}
}

// NewSectionView converts s in full.
func NewSectionView(s *las.Section) SectionView {
	v := SectionView{
		Name:        s.Name,
		Title:       s.Title,
		Association: s.Association,
		Kind:        s.Kind.String(),
		Line:        s.Line,
		Text:        s.Text,
		Raw:         s.Raw(),
		Error:       errString(s.ParseError()),
	}
	for _, r := range s.Records {
		v.Records = append(v.Records, RecordView{
			Mnemonic:     r.Mnemonic,
			Unit:         r.Unit,
			Value:        r.Value,
			Description:  r.Description,
			Format:       r.Format,
			Associations: r.Associations,
			Line:         r.Line,
			Error:        errString(r.Err),
		})
	}
	for _, r := range s.Rows {
		v.Rows = append(v.Rows, RowView{Line: r.Line, Values: r.Values, Error: errString(r.Err)})
	}
	return v
}
