package las

import (
	"strings"
)

// APINumber is a US API or Canadian UWI well identifier reduced to digits.
type APINumber struct {
	Raw    string // value as written in the Well section
	Digits string // 10, 12 or 14 digits
}

// ParseAPINumber accepts API numbers with any punctuation ("42-501-20130",
// "4250120130") as long as 10, 12 or 14 digits remain.
func ParseAPINumber(s string) (APINumber, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '.' || r == '/':
		default:
			return APINumber{}, false
		}
	}
	digits := b.String()
	switch len(digits) {
	case 10, 12, 14:
		return APINumber{Raw: strings.TrimSpace(s), Digits: digits}, true
	}
	return APINumber{}, false
}

// Base returns the first 10 digits: state, county and unique well code.
func (a APINumber) Base() string {
	if len(a.Digits) < 10 {
		return a.Digits
	}
	return a.Digits[:10]
}

// Formatted renders the number as SS-CCC-UUUUU[-DD[-EE]].
func (a APINumber) Formatted() string {
	if len(a.Digits) < 10 {
		return a.Digits
	}
	out := a.Digits[:2] + "-" + a.Digits[2:5] + "-" + a.Digits[5:10]
	for i := 10; i+2 <= len(a.Digits); i += 2 {
		out += "-" + a.Digits[i:i+2]
	}
	return out
}

// API returns the well's API number taken from the Well section UWI and API
// mnemonics. When every valid value shares the same 10-digit base the first
// one is returned; otherwise the longest wins.
func (f *File) API() (APINumber, bool) {
	well := f.Well()
	if well == nil {
		return APINumber{}, false
	}
	var found []APINumber
	for _, r := range well.Records {
		m := strings.ToUpper(r.Mnemonic)
		if m != "UWI" && m != "API" {
			continue
		}
		if a, ok := ParseAPINumber(r.Value); ok {
			found = append(found, a)
		}
	}
	if len(found) == 0 {
		return APINumber{}, false
	}
	best := found[0]
	same := true
	for _, a := range found[1:] {
		if a.Base() != found[0].Base() {
			same = false
		}
		if len(a.Digits) > len(best.Digits) {
			best = a
		}
	}
	if same {
		return found[0], true
	}
	return best, true
}
