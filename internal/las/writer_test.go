package las

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// stripLines drops line numbers and errors so records from different
// sources compare by content.
func stripLines(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Line = 0
		r.Err = nil
		out[i] = r
	}
	return out
}

func rowValues(s *Section) [][]string {
	out := make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Values
	}
	return out
}

func TestWrite_RoundTrip(t *testing.T) {
	tests := []struct {
		file string
		opts WriteOptions
	}{
		{"sample_2.0.las", WriteOptions{}},
		{"sample_1.2.las", WriteOptions{}},
		{"sample_2.0_wrap.las", WriteOptions{}},
		{"sample_1.2.las", WriteOptions{Version: Version20}},
		{"sample_2.0.las", WriteOptions{Version: Version12}},
	}

	for _, tt := range tests {
		t.Run(tt.file+"->"+tt.opts.Version, func(t *testing.T) {
			orig := Parse(tt.file, loadSample(t, tt.file))

			var buf bytes.Buffer
			if err := Write(&buf, orig, tt.opts); err != nil {
				t.Fatalf("Write: %v", err)
			}
			back := Parse("roundtrip", buf.String())

			if err := back.Err(); err != nil {
				t.Fatalf("re-parse errors: %v\n%s", err, buf.String())
			}
			wantVersion := tt.opts.Version
			if wantVersion == "" {
				wantVersion = orig.VersionInfo().Version
			}
			if got := back.VersionInfo().Version; got != wantVersion {
				t.Errorf("version = %q, want %q", got, wantVersion)
			}
			if back.VersionInfo().Wrap != orig.VersionInfo().Wrap {
				t.Errorf("wrap = %v, want %v", back.VersionInfo().Wrap, orig.VersionInfo().Wrap)
			}

			for _, name := range []string{SectionWell, SectionCurves, SectionParameters} {
				o, _ := orig.Section(name)
				b, _ := back.Section(name)
				if o == nil {
					continue
				}
				if b == nil {
					t.Errorf("section %s lost", name)
					continue
				}
				if !reflect.DeepEqual(stripLines(o.Records), stripLines(b.Records)) {
					t.Errorf("section %s records differ:\n got %+v\nwant %+v", name, stripLines(b.Records), stripLines(o.Records))
				}
			}
			if !reflect.DeepEqual(rowValues(orig.Data()), rowValues(back.Data())) {
				t.Errorf("data rows differ:\n got %q\nwant %q", rowValues(back.Data()), rowValues(orig.Data()))
			}
			if o := orig.Other(); o != nil {
				if back.Other() == nil || !reflect.DeepEqual(o.Text, back.Other().Text) {
					t.Error("Other section text differs")
				}
			}
		})
	}
}

func TestWrite_ToggleWrap(t *testing.T) {
	orig := Parse("sample", loadSample(t, "sample_2.0.las"))
	wrap := true

	var buf bytes.Buffer
	if err := Write(&buf, orig, WriteOptions{Wrap: &wrap, ValuesPerLine: 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "WRAP.YES") && !strings.Contains(out, " YES ") {
		t.Errorf("WRAP YES not written:\n%s", out)
	}

	back := Parse("wrapped", out)
	if !back.VersionInfo().Wrap {
		t.Fatal("re-parsed file is not wrapped")
	}
	if !reflect.DeepEqual(rowValues(orig.Data()), rowValues(back.Data())) {
		t.Errorf("rows differ after wrapping: %q", rowValues(back.Data()))
	}

	// depth alone, then 7 values in chunks of 3
	_, data, _ := strings.Cut(out, "\n~A")
	lines := strings.Split(strings.TrimRight(data, "\n"), "\n")[1:]
	if len(lines) != 3*4 {
		t.Errorf("data lines = %d, want 12", len(lines))
	}
}

func TestWrite_Version12SwapsWellInfo(t *testing.T) {
	orig := Parse("sample", loadSample(t, "sample_2.0.las"))

	var buf bytes.Buffer
	if err := Write(&buf, orig, WriteOptions{Version: Version12}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var comp string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "COMP") {
			comp = line
		}
	}
	before, after, ok := strings.Cut(comp, " : ")
	if !ok {
		t.Fatalf("COMP line %q has no delimiter", comp)
	}
	if !strings.Contains(before, "COMPANY") || strings.Contains(before, "ANY OIL") {
		t.Errorf("before colon = %q, want the description", before)
	}
	if strings.TrimSpace(after) != "ANY OIL COMPANY INC." {
		t.Errorf("after colon = %q, want the company name", after)
	}
}

func TestWrite_UnsupportedVersion(t *testing.T) {
	f := Parse("sample", loadSample(t, "sample_3.0.las"))

	var buf bytes.Buffer
	err := Write(&buf, f, WriteOptions{})
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Write(3.0) = %v, want ErrUnsupportedVersion", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Write(3.0) produced %d bytes", buf.Len())
	}

	if err := Write(&buf, f, WriteOptions{Version: "4.0"}); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Write(4.0) = %v, want ErrUnsupportedVersion", err)
	}
}

func TestWrite_KeepsCustomTextSection(t *testing.T) {
	text := loadSample(t, "sample_2.0.las") + "~Xtra notes\n free text line\n"
	f := Parse("custom", text)
	if s, ok := f.Section("xtra"); !ok || s.Kind != KindText {
		t.Fatalf("xtra section = %+v, want a text section", s)
	}

	var buf bytes.Buffer
	if err := Write(&buf, f, WriteOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	back := Parse("back", buf.String())
	s, ok := back.Section("xtra")
	if !ok || !reflect.DeepEqual(s.Text, []string{" free text line"}) {
		t.Errorf("xtra after round trip = %+v", s)
	}
	if back.Other() == nil || len(back.Findings()) != 0 {
		t.Errorf("round trip produced findings %v", back.Findings())
	}
}
