package las

import "testing"

func TestParseAPINumber(t *testing.T) {
	tests := []struct {
		in        string
		wantOK    bool
		digits    string
		formatted string
	}{
		{"42-501-20130", true, "4250120130", "42-501-20130"},
		{"4250120130", true, "4250120130", "42-501-20130"},
		{"42 501 20130 01", true, "425012013001", "42-501-20130-01"},
		{"42-501-20130-01-00", true, "42501201300100", "42-501-20130-01-00"},
		{"42.501.20130", true, "4250120130", "42-501-20130"},
		{"100123401234W500", false, "", ""},
		{"42-501", false, "", ""},
		{"", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAPINumber(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Digits != tt.digits {
				t.Errorf("Digits = %q, want %q", got.Digits, tt.digits)
			}
			if got.Formatted() != tt.formatted {
				t.Errorf("Formatted() = %q, want %q", got.Formatted(), tt.formatted)
			}
			if got.Base() != tt.digits[:10] {
				t.Errorf("Base() = %q", got.Base())
			}
		})
	}
}

func TestFile_API(t *testing.T) {
	tests := []struct {
		name   string
		well   string
		want   string
		wantOK bool
	}{
		{"api only", " API. 42-501-20130 : api\n", "4250120130", true},
		{"uwi only", " UWI. 4250120130 : uwi\n", "4250120130", true},
		{"same base keeps first", " UWI. 4250120130 : uwi\n API. 42-501-20130-01 : api\n", "4250120130", true},
		{"different base keeps longest", " UWI. 4250120130 : uwi\n API. 43-001-00001-02 : api\n", "430010000102", true},
		{"canadian UWI is not an API", " UWI. 100123401234W500 : uwi\n", "", false},
		{"none", " COMP. ACME : c\n", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse(tt.name, "~V\n VERS. 2.0 : v\n WRAP. NO : w\n~W\n"+tt.well)
			got, ok := f.API()
			if ok != tt.wantOK || got.Digits != tt.want {
				t.Errorf("API() = %q, %v; want %q, %v", got.Digits, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := NewOpenFailure("x", nil).API(); ok {
		t.Error("API() on a file without sections returned a value")
	}
}

func TestFile_APISample(t *testing.T) {
	f := Parse("sample", loadSample(t, "sample_2.0.las"))
	got, ok := f.API()
	if !ok || got.Formatted() != "42-501-20130" {
		t.Errorf("API() = %+v, %v", got, ok)
	}
}
