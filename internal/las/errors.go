package las

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies the load stage an error was raised in.
type ErrorKind int

const (
	KindOpen ErrorKind = iota + 1
	KindRead
	KindSplit
	KindVersion
	KindParse
	KindValidate
)

// String returns the slot name used in error messages and reports.
func (k ErrorKind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindRead:
		return "read"
	case KindSplit:
		return "split"
	case KindVersion:
		return "version"
	case KindParse:
		return "parse"
	case KindValidate:
		return "validate"
	default:
		return "unknown"
	}
}

// Stage sentinels. Every *Error and *ParseError matches exactly one of these
// with errors.Is.
var (
	ErrOpen     = errors.New("las open error")
	ErrRead     = errors.New("las read error")
	ErrSplit    = errors.New("las split error")
	ErrVersion  = errors.New("las version error")
	ErrParse    = errors.New("las parse error")
	ErrValidate = errors.New("las validate error")
)

// Causes carried inside stage errors.
var (
	ErrNoSections            = errors.New("no section title lines found")
	ErrEmptyTitle            = errors.New("section title line has no name")
	ErrMissingVersionSection = errors.New("version section not found")
	ErrMissingVERS           = errors.New("VERS mnemonic not found")
	ErrUnknownVersion        = errors.New("version not recognized")
	ErrMalformedLine         = errors.New("malformed line")
	ErrColumnMismatch        = errors.New("column count mismatch")
	ErrNoDefinition          = errors.New("no column definitions for data section")
	ErrMissingSection        = errors.New("missing required section")
	ErrMissingMnemonic       = errors.New("missing required mnemonic")
	ErrInvalidValue          = errors.New("invalid mnemonic value")
	ErrDuplicateSection      = errors.New("duplicate section")
	ErrUnsupportedVersion    = errors.New("unsupported LAS version for writing")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindOpen:
		return ErrOpen
	case KindRead:
		return ErrRead
	case KindSplit:
		return ErrSplit
	case KindVersion:
		return ErrVersion
	case KindParse:
		return ErrParse
	case KindValidate:
		return ErrValidate
	}
	return nil
}

// Error is a classified load or validation failure.
type Error struct {
	Kind     ErrorKind
	Section  string // canonical section name, empty for file-level errors
	Line     int    // 1-based source line, 0 when not tied to a line
	Critical bool
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("las ")
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Section != "" {
		fmt.Fprintf(&b, " in section %q", e.Section)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's stage.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind ErrorKind, section string, line int, err error, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Section:  section,
		Line:     line,
		Critical: kind != KindParse && kind != KindValidate,
		Msg:      fmt.Sprintf(format, args...),
		Err:      err,
	}
}

// Anomaly is a single line (or wrapped group of lines) that did not match
// the expected record shape. The record or row it describes is still kept.
type Anomaly struct {
	Line int
	Text string
	Err  error
}

func (a Anomaly) Error() string {
	if a.Line > 0 {
		return fmt.Sprintf("line %d: %v", a.Line, a.Err)
	}
	return a.Err.Error()
}

func (a Anomaly) Unwrap() error { return a.Err }

// ParseError collects the anomalies found while parsing one section.
type ParseError struct {
	Section   string
	Critical  bool // set for Version, Well, Curves and Data
	Anomalies []Anomaly
}

func (e *ParseError) Error() string {
	if len(e.Anomalies) == 0 {
		return fmt.Sprintf("las parse error in section %q", e.Section)
	}
	first := e.Anomalies[0]
	if len(e.Anomalies) == 1 {
		return fmt.Sprintf("las parse error in section %q: %v", e.Section, first)
	}
	return fmt.Sprintf("las parse error in section %q: %d anomalies, first %v",
		e.Section, len(e.Anomalies), first)
}

// Is matches ErrParse and any cause carried by one of the anomalies.
func (e *ParseError) Is(target error) bool {
	if target == ErrParse {
		return true
	}
	for _, a := range e.Anomalies {
		if errors.Is(a.Err, target) {
			return true
		}
	}
	return false
}

func (e *ParseError) add(line int, text string, err error) {
	e.Anomalies = append(e.Anomalies, Anomaly{Line: line, Text: text, Err: err})
}

// orNil converts an empty collector into an untyped nil error.
func (e *ParseError) orNil() error {
	if e == nil || len(e.Anomalies) == 0 {
		return nil
	}
	return e
}

// Finding is a non-fatal observation recorded during splitting or produced
// by validation.
type Finding struct {
	Section  string
	Line     int
	Critical bool
	Err      error
}

func (f Finding) Error() string {
	var b strings.Builder
	if f.Section != "" {
		fmt.Fprintf(&b, "section %q: ", f.Section)
	}
	if f.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", f.Line)
	}
	if f.Err != nil {
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

func (f Finding) Unwrap() error { return f.Err }

// ErrorEntry names one populated error slot in a File's aggregate view.
type ErrorEntry struct {
	Slot    ErrorKind
	Section string
	Err     error
}
