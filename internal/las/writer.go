package las

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteOptions controls Write. The zero value writes the file's own version
// and wrap mode.
type WriteOptions struct {
	Version       string // "1.2" or "2.0"; empty keeps the file's version
	Wrap          *bool  // nil keeps the file's WRAP
	ValuesPerLine int    // wrapped rows: values per continuation line (default 5)
}

var defaultTitles = map[string]string{
	SectionVersion:    "Version Information",
	SectionWell:       "Well Information",
	SectionCurves:     "Curve Information",
	SectionParameters: "Parameter Information",
	SectionOther:      "Other Information",
}

// Write serializes f as a LAS 1.2 or 2.0 file. Writing 3.0 returns
// ErrUnsupportedVersion. The Version section is rebuilt from the target
// version and wrap mode; the data section is always written last.
func Write(w io.Writer, f *File, opts WriteOptions) error {
	version := opts.Version
	if version == "" {
		version = f.info.Version
	}
	if version != Version12 && version != Version20 {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	wrap := f.info.Wrap
	if opts.Wrap != nil {
		wrap = *opts.Wrap
	}
	perLine := opts.ValuesPerLine
	if perLine <= 0 {
		perLine = 5
	}

	bw := bufio.NewWriter(w)
	lw := lasWriter{w: bw, version: version}

	lw.versionSection(f.VersionSection(), wrap)
	for _, sec := range f.Sections() {
		switch {
		case sec.Name == SectionVersion || sec.Kind == KindData:
			continue
		case sec.Kind == KindText:
			lw.textSection(sec)
		case isV2Section(sec.Name):
			lw.headerSection(sec, sec.Records)
		}
	}
	if data := f.Data(); data != nil {
		names := []string{}
		if curves := f.Curves(); curves != nil {
			names = curves.Mnemonics()
		}
		lw.dataSection(data, names, wrap, perLine)
	}
	if lw.err != nil {
		return lw.err
	}
	return bw.Flush()
}

func isV2Section(name string) bool {
	switch name {
	case SectionWell, SectionCurves, SectionParameters:
		return true
	}
	return false
}

type lasWriter struct {
	w       *bufio.Writer
	version string
	err     error
}

func (lw *lasWriter) printf(format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format, args...)
}

func (lw *lasWriter) title(sec *Section, name string) {
	title := defaultTitles[name]
	// Keep the declared title when a 1.2/2.0 reader resolves it to the same section.
	if sec != nil && sec.Title != "" && letterSections[lowerASCII(sec.Title[0])] == name {
		title = sec.Title
	}
	lw.printf("~%s\n", title)
}

func (lw *lasWriter) versionSection(vs *Section, wrap bool) {
	wrapValue, wrapDescr := "NO", "One line per depth step"
	if wrap {
		wrapValue, wrapDescr = "YES", "Multiple lines per depth step"
	}
	records := []Record{
		{Mnemonic: "VERS", Value: lw.version, Description: "CWLS LOG ASCII STANDARD - VERSION " + lw.version},
		{Mnemonic: "WRAP", Value: wrapValue, Description: wrapDescr},
	}
	if vs != nil {
		for _, r := range vs.Records {
			switch strings.ToUpper(r.Mnemonic) {
			case "VERS", "WRAP", "DLM":
				continue
			}
			records = append(records, r)
		}
	}
	lw.title(vs, SectionVersion)
	lw.records(SectionVersion, records)
}

func (lw *lasWriter) headerSection(sec *Section, records []Record) {
	lw.title(sec, sec.Name)
	lw.records(sec.Name, records)
}

func (lw *lasWriter) textSection(sec *Section) {
	if sec.Name == SectionOther {
		lw.title(sec, SectionOther)
	} else {
		lw.printf("~%s\n", sec.Title)
	}
	for _, line := range sec.Text {
		lw.printf("%s\n", line)
	}
}

// records writes aligned "MNEM.UNIT  VALUE : DESCRIPTION" lines.
func (lw *lasWriter) records(section string, records []Record) {
	var mnemW, unitW, valueW int
	for _, r := range records {
		value, _ := lw.positions(section, r)
		mnemW = max(mnemW, len(r.Mnemonic))
		unitW = max(unitW, len(r.Unit))
		valueW = max(valueW, len(value))
	}
	for _, r := range records {
		value, descr := lw.positions(section, r)
		line := fmt.Sprintf(" %-*s.%-*s  %-*s : %s", mnemW, r.Mnemonic, unitW, r.Unit, valueW, value, descr)
		lw.printf("%s\n", strings.TrimRight(line, " "))
	}
}

// positions returns what goes before and after the colon.
func (lw *lasWriter) positions(section string, r Record) (string, string) {
	if lw.version == Version12 && section == SectionWell && swappedWellMnemonics[strings.ToUpper(r.Mnemonic)] {
		return r.Description, r.Value
	}
	return r.Value, r.Description
}

func (lw *lasWriter) dataSection(sec *Section, names []string, wrap bool, perLine int) {
	widths := make([]int, 0, len(names))
	for _, n := range names {
		widths = append(widths, len(n))
	}
	for _, row := range sec.Rows {
		for i, v := range row.Values {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], len(v))
		}
	}

	header := "~A"
	for i, n := range names {
		header += " " + pad(n, widths[i])
	}
	lw.printf("%s\n", strings.TrimRight(header, " "))

	for _, row := range sec.Rows {
		if !wrap {
			lw.printf("%s\n", joinPadded(row.Values, widths))
			continue
		}
		if len(row.Values) == 0 {
			continue
		}
		lw.printf("%s\n", joinPadded(row.Values[:1], widths[:1]))
		for i := 1; i < len(row.Values); i += perLine {
			end := min(i+perLine, len(row.Values))
			lw.printf("%s\n", joinPadded(row.Values[i:end], widths[i:end]))
		}
	}
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

func joinPadded(values []string, widths []int) string {
	var b strings.Builder
	for i, v := range values {
		b.WriteByte(' ')
		b.WriteString(pad(v, widths[i]))
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
