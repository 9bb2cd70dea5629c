package las

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Row is one logical data row. Values stay as text; numeric conversion is
// left to downstream views such as File.Frame.
type Row struct {
	Line   int // line of the first physical line of the row
	Values []string
	Err    error // set when the value count does not match the column count
}

// ParseData assembles data rows from a data section body.
//
// columns is the number of curve definitions; zero means unknown, in which
// case every line becomes a row and the section records ErrNoDefinition.
// With WRAP enabled physical lines are joined until the token count reaches
// columns. Rows with the wrong number of values are kept and reported.
func ParseData(name string, rs RawSection, columns int, g Grammar) ([]Row, error) {
	perr := &ParseError{Section: name, Critical: isRequired(name)}
	tok := tokenizer{delim: g.info.Delimiter, columns: columns}
	wrap := g.info.Wrap && columns > 0

	if columns <= 0 {
		perr.add(rs.Line, rs.Title, ErrNoDefinition)
	}

	var (
		rows    []Row
		pending []string
		start   int
	)
	emit := func(line int, values []string) {
		row := Row{Line: line, Values: values}
		if columns > 0 && len(values) != columns {
			row.Err = fmt.Errorf("%w: expected %d values, got %d", ErrColumnMismatch, columns, len(values))
			perr.add(line, strings.Join(values, " "), row.Err)
		}
		rows = append(rows, row)
	}

	for i, line := range rs.Body {
		if skipLine(line) {
			continue
		}
		lineNo := rs.BodyLine(i)
		values := tok.split(line)
		if !wrap {
			emit(lineNo, values)
			continue
		}
		if len(pending) == 0 {
			start = lineNo
		}
		pending = append(pending, values...)
		if len(pending) >= columns {
			emit(start, pending)
			pending = nil
		}
	}
	if len(pending) > 0 {
		emit(start, pending)
	}
	return rows, perr.orNil()
}

type tokenizer struct {
	delim   Delimiter
	columns int
}

func (t tokenizer) split(line string) []string {
	switch t.delim {
	case DelimComma:
		return splitComma(line)
	case DelimTab:
		parts := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	fields := strings.Fields(line)
	if t.columns > 0 && len(fields) < t.columns {
		if unglued := splitGlued(fields); len(unglued) == t.columns {
			return unglued
		}
	}
	return fields
}

// splitComma reads one comma-delimited line, honouring quoted strings.
func splitComma(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		fields = strings.Split(line, ",")
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// splitGlued separates numbers that fixed-width writers ran together when a
// negative value filled its column, e.g. "1670.000-999.2500".
func splitGlued(fields []string) []string {
	out := make([]string, 0, len(fields)+4)
	for _, f := range fields {
		start := 0
		for i := 1; i < len(f); i++ {
			if f[i] != '-' {
				continue
			}
			prev := f[i-1]
			if (prev >= '0' && prev <= '9') || prev == '.' {
				out = append(out, f[start:i])
				start = i
			}
		}
		out = append(out, f[start:])
	}
	return out
}
