package las

import (
	"math"
	"reflect"
	"testing"
)

func TestFile_Table(t *testing.T) {
	f := Parse("sample", loadSample(t, "sample_1.2.las"))
	tbl := f.Table()

	if want := []string{"DEPT", "DT", "RHOB", "NPHI"}; !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Columns = %v, want %v", tbl.Columns, want)
	}
	if len(tbl.Rows) != 3 || tbl.Rows[2][2] != "-999.2500" {
		t.Errorf("Rows = %q", tbl.Rows)
	}
}

func TestFile_TableNumberedColumns(t *testing.T) {
	f := Parse("mismatch", "~V\n VERS. 2.0 : v\n WRAP. NO : w\n~C\n DEPT.M : d\n~A\n1 2 3\n4 5\n")
	tbl := f.Table()
	if want := []string{"C1", "C2", "C3"}; !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Columns = %v, want %v", tbl.Columns, want)
	}

	empty := Parse("nodata", "~V\n VERS. 2.0 : v\n")
	if tbl := empty.Table(); tbl.Columns != nil || tbl.Rows != nil {
		t.Errorf("Table() without data = %+v, want zero", tbl)
	}
}

func TestFile_TableDuplicateCurves(t *testing.T) {
	f := Parse("dups", "~V\n VERS. 2.0 : v\n WRAP. NO : w\n~C\n DEPT.M : d\n GR.GAPI : a\n GR.GAPI : b\n~A\n1 2 3\n")
	if want := []string{"DEPT", "GR", "GR_1"}; !reflect.DeepEqual(f.Table().Columns, want) {
		t.Errorf("Columns = %v, want %v", f.Table().Columns, want)
	}
}

func TestFile_Frame(t *testing.T) {
	f := Parse("sample", loadSample(t, "sample_2.0.las"))
	fr := f.Frame()

	if fr.Null != -999.25 {
		t.Errorf("Null = %v, want -999.25", fr.Null)
	}
	if fr.Invalid != 0 {
		t.Errorf("Invalid = %d, want 0", fr.Invalid)
	}

	rhob, ok := fr.Column("rhob")
	if !ok {
		t.Fatal("RHOB column missing")
	}
	if rhob[0] != 2550 || !math.IsNaN(rhob[2]) {
		t.Errorf("RHOB = %v, want [2550 2550 NaN]", rhob)
	}

	dept, _ := fr.Column("DEPT")
	if want := []float64{1670, 1669.875, 1669.75}; !reflect.DeepEqual(dept, want) {
		t.Errorf("DEPT = %v, want %v", dept, want)
	}

	if _, ok := fr.Column("NOPE"); ok {
		t.Error("Column(NOPE) found a column")
	}
}

func TestFile_FrameTextValues(t *testing.T) {
	f := Parse("sample", loadSample(t, "sample_3.0.las"))
	fr := f.Frame()

	if fr.Invalid != 3 {
		t.Errorf("Invalid = %d, want 3 lithology cells", fr.Invalid)
	}
	lith, _ := fr.Column("LITH")
	for i, v := range lith {
		if !math.IsNaN(v) {
			t.Errorf("LITH[%d] = %v, want NaN", i, v)
		}
	}
	gr, _ := fr.Column("GR")
	if gr[0] != 52.3 || !math.IsNaN(gr[2]) {
		t.Errorf("GR = %v", gr)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1670.000", 1670, true},
		{" -999.25 ", -999.25, true},
		{"+0.5", 0.5, true},
		{".5", 0.5, true},
		{"1.5E-3", 0.0015, true},
		{`"42"`, 42, true},
		{"SHALE", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
