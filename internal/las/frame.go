package las

// frame.go builds column-oriented views of the data section for consumers
// that want named columns or numbers rather than raw rows.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Table is the data section with curve names as column headers.
type Table struct {
	Columns []string   // curve mnemonics, repeats renamed GR, GR_1, ...
	Rows    [][]string // one entry per data row
}

// Table returns the data section as text columns. Columns are named from the
// Curves section when its length matches the rows; otherwise they are
// numbered C1, C2, ...
func (f *File) Table() Table {
	data := f.Data()
	if data == nil {
		return Table{}
	}
	width := 0
	for _, r := range data.Rows {
		width = max(width, len(r.Values))
	}

	var columns []string
	if curves := f.Curves(); curves != nil && len(curves.Records) == width {
		columns = curves.ColumnNames()
	} else {
		columns = make([]string, width)
		for i := range columns {
			columns[i] = "C" + strconv.Itoa(i+1)
		}
	}

	rows := make([][]string, len(data.Rows))
	for i, r := range data.Rows {
		rows[i] = r.Values
	}
	return Table{Columns: columns, Rows: rows}
}

// Frame is the data section converted to float64 values.
type Frame struct {
	Columns []string
	Values  [][]float64 // Values[row][column]; NULL and non-numeric cells are NaN
	Null    float64     // NULL value from the Well section, NaN when undefined
	Invalid int         // non-numeric cells other than NULL
}

// Frame converts Table to numbers. Cells equal to the Well NULL value become
// NaN, as do cells that are not numeric. Short rows are padded with NaN.
func (f *File) Frame() Frame {
	t := f.Table()
	fr := Frame{Columns: t.Columns, Null: math.NaN()}
	if w := f.Well(); w != nil {
		if v, ok := ParseNumber(w.Value("NULL")); ok {
			fr.Null = v
		}
	}

	fr.Values = make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]float64, len(t.Columns))
		for j := range out {
			out[j] = math.NaN()
			if j >= len(row) {
				continue
			}
			v, ok := ParseNumber(row[j])
			switch {
			case !ok:
				fr.Invalid++
			case v == fr.Null:
			default:
				out[j] = v
			}
		}
		fr.Values[i] = out
	}
	return fr
}

// Column returns the values of the named column (case-insensitive).
func (fr Frame) Column(name string) ([]float64, bool) {
	for j, c := range fr.Columns {
		if strings.EqualFold(c, name) {
			out := make([]float64, len(fr.Values))
			for i, row := range fr.Values {
				out[i] = row[j]
			}
			return out, true
		}
	}
	return nil, false
}

// ParseNumber converts a LAS numeric cell. Surrounding quotes and
// whitespace are ignored.
func ParseNumber(s string) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
